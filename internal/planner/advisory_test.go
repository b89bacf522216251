package planner

import (
	"testing"

	"github.com/gezgin-ai/gezgin/internal/models"
)

const briefingJSON = `{
  "headline": "Loop It Up",
  "summary": "A packed downtown day.",
  "weather": {"temp": "8-14C", "condition": "Windy", "emoji": "💨", "advice": "Bring a windbreaker"},
  "dressCode": {"title": "Smart casual", "description": "Layers for the lakefront"},
  "packing": ["Windbreaker", "Comfortable shoes"],
  "transport": "The L covers every stop today.",
  "culturalTip": "Tipping 18-20% is expected.",
  "safetyTip": "Mind the gap on the L platforms."
}`

func TestParseBriefingAcceptsRawAndFencedJSON(t *testing.T) {
	for _, text := range []string{
		briefingJSON,
		"```json\n" + briefingJSON + "\n```",
		"Here is your briefing:\n" + briefingJSON,
	} {
		briefing, ok := ParseBriefing(text)
		if !ok {
			t.Errorf("well-formed briefing rejected: %.40q", text)
			continue
		}
		if briefing.Headline != "Loop It Up" || len(briefing.Packing) != 2 {
			t.Errorf("briefing parsed incorrectly: %+v", briefing)
		}
	}
}

func TestParseBriefingFallsBackOnGarbage(t *testing.T) {
	for _, text := range []string{"", "not json at all", "{broken", "[]"} {
		briefing, ok := ParseBriefing(text)
		if ok {
			t.Errorf("garbage briefing accepted: %q", text)
		}
		if briefing.Headline == "" || briefing.Summary == "" {
			t.Error("fallback briefing must be renderable")
		}
	}
}

func TestParseLiveStatusesDropsGhostIDs(t *testing.T) {
	day := []models.Activity{
		{ID: "a1", Activity: "Millennium Park"},
		{ID: "a2", Activity: "Art Institute"},
	}
	text := `[
	  {"id": "a1", "status": "open", "message": "All clear"},
	  {"id": "ghost", "status": "closed", "message": "Never existed"},
	  {"id": "a2", "status": "alert", "message": "Special event crowds", "details": "Expect lines"}
	]`

	statuses := ParseLiveStatuses(text, day)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if _, ok := statuses["ghost"]; ok {
		t.Error("record with unknown activity id survived validation")
	}
	if statuses["a2"].Status != models.LiveStatusAlert {
		t.Errorf("expected alert for a2, got %s", statuses["a2"].Status)
	}

	if got := CountAlerts(statuses); got != 1 {
		t.Errorf("CountAlerts = %d, want 1", got)
	}
}

func TestParseLiveStatusesDegradesToEmpty(t *testing.T) {
	day := []models.Activity{{ID: "a1"}}
	for _, text := range []string{"", "no data", "{\"id\": \"a1\"}", "[{bad"} {
		statuses := ParseLiveStatuses(text, day)
		if len(statuses) != 0 {
			t.Errorf("expected empty map for %q, got %v", text, statuses)
		}
	}
}
