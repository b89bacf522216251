// Package models defines the core data structures for Gezgin.
//
// It includes the itinerary types (Activity, TripPlan), user preference types,
// and advisory payload types, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// ActivityStatus represents the lifecycle status of a single itinerary stop.
type ActivityStatus string

const (
	// ActivityStatusPending indicates the stop has not been visited or booked.
	ActivityStatusPending ActivityStatus = "pending"
	// ActivityStatusBooked indicates the stop has an explicit booking.
	ActivityStatusBooked ActivityStatus = "booked"
	// ActivityStatusCompleted indicates the user confirmed arrival at the stop.
	ActivityStatusCompleted ActivityStatus = "completed"
)

// ActivityType is a categorical tag used for cost estimation and display.
type ActivityType string

const (
	ActivityTypeCulture   ActivityType = "culture"
	ActivityTypeFood      ActivityType = "food"
	ActivityTypeNature    ActivityType = "nature"
	ActivityTypeNightlife ActivityType = "nightlife"
	ActivityTypeShopping  ActivityType = "shopping"
	ActivityTypeSport     ActivityType = "sport"
	ActivityTypeGeneral   ActivityType = "general"
)

// Price level display strings, ordered from cheapest to most expensive.
const (
	PriceLevelFree     = "Free"
	PriceLevelCheap    = "$"
	PriceLevelModerate = "$$"
	PriceLevelPricey   = "$$$"
	PriceLevelLuxury   = "$$$$"
)

// TripPlanStatus represents the lifecycle status of a trip plan.
type TripPlanStatus string

const (
	// TripPlanStatusDraft indicates the plan is held in the draft store.
	TripPlanStatusDraft TripPlanStatus = "draft"
	// TripPlanStatusConfirmed indicates the plan entered active planning or tour use.
	TripPlanStatusConfirmed TripPlanStatus = "confirmed"
)

// Error variables for better error handling and testability
var (
	ErrEmptyActivityID    = errors.New("activity id cannot be empty")
	ErrEmptyActivityTitle = errors.New("activity title cannot be empty")
	ErrInvalidDay         = errors.New("activity day must be >= 1")
	ErrNegativeCost       = errors.New("estimated cost cannot be negative")
	ErrEmptyPlanID        = errors.New("plan id cannot be empty")
	ErrEmptyDestination   = errors.New("destination cannot be empty")
	ErrInvalidDuration    = errors.New("duration must be >= 1")
	ErrDuplicateActivity  = errors.New("duplicate activity id within plan")
)

// IsValidActivityStatus checks if the given activity status is supported.
func IsValidActivityStatus(s ActivityStatus) bool {
	switch s {
	case ActivityStatusPending, ActivityStatusBooked, ActivityStatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidActivityType checks if the given activity type tag is supported.
func IsValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityTypeCulture, ActivityTypeFood, ActivityTypeNature, ActivityTypeNightlife,
		ActivityTypeShopping, ActivityTypeSport, ActivityTypeGeneral:
		return true
	default:
		return false
	}
}

// Activity represents one scheduled stop in an itinerary.
//
// Day is 1-based; a zero Day is treated as day 1 everywhere (default-day rule),
// so marshaled payloads from the generator may omit it. Lat/Lng of zero mean
// the stop has no coordinates and is skipped by distance computation.
type Activity struct {
	ID            string         `json:"id"`
	Day           int            `json:"day,omitempty"`
	Time          string         `json:"time"` // display string, not machine time
	Activity      string         `json:"activity"`
	Location      string         `json:"location,omitempty"`
	Description   string         `json:"description,omitempty"`
	Status        ActivityStatus `json:"status"`
	Locked        bool           `json:"locked,omitempty"`
	BookingURL    string         `json:"bookingUrl,omitempty"`
	ImageURL      string         `json:"imageUrl,omitempty"`
	Lat           float64        `json:"lat,omitempty"`
	Lng           float64        `json:"lng,omitempty"`
	Type          ActivityType   `json:"type,omitempty"`
	PriceLevel    string         `json:"priceLevel,omitempty"`
	EstimatedCost float64        `json:"estimatedCost,omitempty"`
}

// EffectiveDay returns the activity's day with the default-day rule applied.
func (a Activity) EffectiveDay() int {
	if a.Day < 1 {
		return 1
	}
	return a.Day
}

// HasCoordinates reports whether the stop carries usable coordinates.
func (a Activity) HasCoordinates() bool {
	return a.Lat != 0 || a.Lng != 0
}

// Validate performs structural validation on a single activity.
func (a *Activity) Validate() error {
	if a.ID == "" {
		return ErrEmptyActivityID
	}
	if a.Activity == "" {
		return ErrEmptyActivityTitle
	}
	if a.Day < 0 {
		return ErrInvalidDay
	}
	if a.EstimatedCost < 0 {
		return ErrNegativeCost
	}
	return nil
}

// TripPlan represents a full day-partitioned itinerary plus trip metadata.
type TripPlan struct {
	ID            string         `json:"id"`
	CreatedAt     int64          `json:"createdAt"` // unix millis, used only for draft sort order
	Destination   string         `json:"destination"`
	Dates         string         `json:"dates,omitempty"`
	Duration      int            `json:"duration,omitempty"`
	Status        TripPlanStatus `json:"status"`
	CurrentStopID string         `json:"currentStopId,omitempty"`
	Activities    []Activity     `json:"activities"`
}

// Validate checks plan metadata and the per-plan activity invariants.
func (p *TripPlan) Validate() error {
	if p.ID == "" {
		return ErrEmptyPlanID
	}
	if p.Destination == "" {
		return ErrEmptyDestination
	}
	seen := make(map[string]bool, len(p.Activities))
	for i := range p.Activities {
		a := &p.Activities[i]
		if err := a.Validate(); err != nil {
			return err
		}
		if seen[a.ID] {
			return ErrDuplicateActivity
		}
		seen[a.ID] = true
	}
	return nil
}

// ActivityByID returns a pointer to the activity with the given id, or nil.
func (p *TripPlan) ActivityByID(id string) *Activity {
	for i := range p.Activities {
		if p.Activities[i].ID == id {
			return &p.Activities[i]
		}
	}
	return nil
}

// NextStop returns the first activity that is not yet completed, or nil when
// every stop is done. Used by the tour guide to pick the current stop.
func (p *TripPlan) NextStop() *Activity {
	for i := range p.Activities {
		if p.Activities[i].Status != ActivityStatusCompleted {
			return &p.Activities[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the plan. Mutating the copy never touches the
// original's activity slice.
func (p TripPlan) Clone() TripPlan {
	out := p
	out.Activities = make([]Activity, len(p.Activities))
	copy(out.Activities, p.Activities)
	return out
}

// TripLocation is a named coordinate pair, e.g. the user's live GPS position.
type TripLocation struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleModel MessageRole = "model"
)

// Message represents one turn in a planner or guide conversation.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Image     string      `json:"image,omitempty"` // data URI
	Timestamp time.Time   `json:"timestamp"`
}

// Credential is the single persisted login record. The credential check is a
// thin equality test, not itinerary logic.
type Credential struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DigitalStamp is a gamification token collected on arrival at a stop.
type DigitalStamp struct {
	ID        string    `json:"id"`
	PlaceName string    `json:"placeName"`
	City      string    `json:"city"`
	Date      time.Time `json:"date"`
	Icon      string    `json:"icon"`
}

// FavoritePlace is a bookmarked activity on the user's profile.
type FavoritePlace struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Tags     []string  `json:"tags,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// Notification is a short attention-grabbing message queued for display.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
