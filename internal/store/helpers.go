package store

import (
	"encoding/json"
	"fmt"

	"github.com/gezgin-ai/gezgin/internal/models"
)

// marshalPlan serializes a trip plan for the opaque payload column.
func marshalPlan(p models.TripPlan) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal trip plan %s failed: %w", p.ID, err)
	}
	return string(b), nil
}

// unmarshalPlan deserializes a payload column back into a trip plan.
func unmarshalPlan(payload string) (*models.TripPlan, error) {
	var p models.TripPlan
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("unmarshal trip plan failed: %w", err)
	}
	return &p, nil
}

// marshalProfile serializes the preference profile payload.
func marshalProfile(p models.PreferenceProfile) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal profile failed: %w", err)
	}
	return string(b), nil
}

// unmarshalProfile deserializes the preference profile payload.
func unmarshalProfile(payload string) (*models.PreferenceProfile, error) {
	var p models.PreferenceProfile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile failed: %w", err)
	}
	return &p, nil
}
