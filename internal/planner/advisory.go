package planner

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gezgin-ai/gezgin/internal/models"
)

// fallbackBriefing is shown when the generator's briefing payload cannot be
// parsed. Neutral content, so the day screen still renders.
var fallbackBriefing = models.BriefingData{
	Headline: "Your Day Ahead",
	Summary:  "We couldn't fetch a live briefing right now, but your itinerary is ready. Check each stop for details.",
	Weather: models.BriefingWeather{
		Temp:      "--",
		Condition: "Unknown",
		Emoji:     "🌤",
		Advice:    "Check a local forecast before heading out.",
	},
	DressCode: models.BriefingDressCode{
		Title:       "Comfortable",
		Description: "Dress in layers and wear comfortable shoes.",
	},
	Packing:     []string{"Phone charger", "Water bottle"},
	Transport:   "Allow extra time between stops.",
	CulturalTip: "A friendly greeting goes a long way.",
	SafetyTip:   "Keep an eye on your belongings in crowded areas.",
}

// ParseBriefing validates a briefing payload. The returned data is always
// renderable: on any parse failure the neutral fallback briefing is returned
// and ok is false.
func ParseBriefing(text string) (models.BriefingData, bool) {
	payload := extractJSONObject(stripFences(text))
	if payload == "" {
		slog.Warn("planner.ParseBriefing: no JSON object in response")
		return fallbackBriefing, false
	}

	var briefing models.BriefingData
	if err := json.Unmarshal([]byte(payload), &briefing); err != nil {
		slog.Warn("planner.ParseBriefing: payload rejected", "error", err)
		return fallbackBriefing, false
	}
	if briefing.Headline == "" && briefing.Summary == "" {
		slog.Warn("planner.ParseBriefing: payload empty after parse")
		return fallbackBriefing, false
	}
	return briefing, true
}

// ParseLiveStatuses validates a live-check payload against the day's
// activities. Records referencing unknown activity ids are dropped; duplicate
// records keep the last occurrence. A failed parse yields an empty map, never
// an error, so the tracker degrades to "no data".
func ParseLiveStatuses(text string, dayActivities []models.Activity) map[string]models.LiveStatus {
	statuses := make(map[string]models.LiveStatus)

	payload := extractJSONArray(stripFences(text))
	if payload == "" {
		slog.Warn("planner.ParseLiveStatuses: no JSON array in response")
		return statuses
	}

	var records []models.LiveStatus
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		slog.Warn("planner.ParseLiveStatuses: payload rejected", "error", err)
		return statuses
	}

	known := make(map[string]bool, len(dayActivities))
	for _, a := range dayActivities {
		known[a.ID] = true
	}
	for _, r := range records {
		if !known[r.ID] {
			slog.Debug("planner.ParseLiveStatuses: dropping unknown activity id", "id", r.ID)
			continue
		}
		statuses[r.ID] = r
	}
	return statuses
}

// CountAlerts tallies the statuses that need the traveler's attention.
func CountAlerts(statuses map[string]models.LiveStatus) int {
	count := 0
	for _, s := range statuses {
		if s.Status.NeedsAttention() {
			count++
		}
	}
	return count
}

// stripFences removes Markdown code fences the generator sometimes adds
// despite being told not to.
func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractJSONObject slices the first '{' through the last '}'.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// extractJSONArray slices the first '[' through the last ']'.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
