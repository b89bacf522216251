package models

// BriefingWeather is the weather section of a daily briefing.
type BriefingWeather struct {
	Temp      string `json:"temp"`
	Condition string `json:"condition"`
	Emoji     string `json:"emoji"`
	Advice    string `json:"advice"`
}

// BriefingDressCode is the outfit advice section of a daily briefing.
type BriefingDressCode struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BriefingData is the advisory daily-prep payload produced by the generator in
// briefing mode. It is read-only display data and never mutates the trip plan.
type BriefingData struct {
	Headline    string            `json:"headline"`
	Summary     string            `json:"summary"`
	Weather     BriefingWeather   `json:"weather"`
	DressCode   BriefingDressCode `json:"dressCode"`
	Packing     []string          `json:"packing"`
	Transport   string            `json:"transport"`
	CulturalTip string            `json:"culturalTip"`
	SafetyTip   string            `json:"safetyTip"`
}

// LiveStatusKind classifies a live-check result for one activity.
type LiveStatusKind string

const (
	LiveStatusOpen   LiveStatusKind = "open"
	LiveStatusBusy   LiveStatusKind = "busy"
	LiveStatusClosed LiveStatusKind = "closed"
	LiveStatusAlert  LiveStatusKind = "alert"
)

// NeedsAttention reports whether the status should raise a notification.
func (k LiveStatusKind) NeedsAttention() bool {
	return k == LiveStatusClosed || k == LiveStatusAlert
}

// LiveStatus is one record of the live-check advisory payload: the current
// open/closed/busy state of a single itinerary stop, keyed by activity id.
type LiveStatus struct {
	ID      string         `json:"id"`
	Status  LiveStatusKind `json:"status"`
	Message string         `json:"message"`
	Details string         `json:"details,omitempty"`
}
