package planner

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gezgin-ai/gezgin/internal/models"
)

// UpdateConfirmation replaces an accepted plan payload in the conversational
// text shown to the user.
const UpdateConfirmation = "Itinerary updated!"

// fencedBlockRE matches the first fenced code block in a generator response,
// with or without a language tag.
var fencedBlockRE = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// MergeOutcome is the result of running one generator response through the
// merge protocol.
type MergeOutcome struct {
	// Accepted reports whether a well-formed plan payload was found and the
	// wholesale replacement should be applied.
	Accepted bool
	// Activities is the complete replacement list when Accepted.
	Activities []models.Activity
	// Reason explains a rejection for logging; empty on accept and on plain
	// conversational responses.
	Reason string
	// CleanText is the conversational remainder with any payload block
	// removed. On accept it carries the confirmation line.
	CleanText string
}

// ParseResponse runs the merge protocol over a raw generator response:
// extract the embedded payload block, parse it, shape-check it, and compute
// the cleaned conversational text. A response with no payload block is a
// plain conversational turn: not accepted, no reason, text passed through.
// A malformed or wrong-shaped block is rejected; the broken block is stripped
// from the text so the user never sees raw JSON.
func ParseResponse(text string) MergeOutcome {
	block, raw, found := extractBlock(text)
	if !found {
		return MergeOutcome{CleanText: strings.TrimSpace(text)}
	}

	activities, reason := decodeActivities(block)
	if reason != "" {
		slog.Warn("planner.ParseResponse: plan payload rejected", "reason", reason)
		return MergeOutcome{
			Reason:    reason,
			CleanText: removeBlock(text, raw, ""),
		}
	}

	return MergeOutcome{
		Accepted:   true,
		Activities: activities,
		CleanText:  removeBlock(text, raw, UpdateConfirmation),
	}
}

// extractBlock finds the embedded payload. It prefers a fenced block; a
// response that is itself a bare JSON object also counts.
func extractBlock(text string) (block, raw string, found bool) {
	if m := fencedBlockRE.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), m[0], true
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, trimmed, true
	}
	return "", "", false
}

// decodeActivities parses and shape-checks the payload. The contract is a
// JSON object with an "activities" array holding the complete plan; anything
// else is rejected with a reason.
func decodeActivities(block string) ([]models.Activity, string) {
	var probe struct {
		Activities json.RawMessage `json:"activities"`
	}
	if err := json.Unmarshal([]byte(block), &probe); err != nil {
		return nil, "payload is not valid JSON: " + err.Error()
	}
	if probe.Activities == nil {
		return nil, "payload has no activities field"
	}
	var activities []models.Activity
	if err := json.Unmarshal(probe.Activities, &activities); err != nil {
		return nil, "activities field is not an array of activities: " + err.Error()
	}
	return activities, ""
}

func removeBlock(text, raw, replacement string) string {
	cleaned := strings.TrimSpace(strings.Replace(text, raw, replacement, 1))
	if cleaned == "" && replacement != "" {
		return replacement
	}
	return cleaned
}

// ApplyUpdate performs the wholesale replacement on a plan. Plan identity and
// trip-level fields survive; only the activity list is swapped. It is a no-op
// for outcomes that were not accepted.
func ApplyUpdate(plan *models.TripPlan, outcome MergeOutcome) bool {
	if !outcome.Accepted || plan == nil {
		return false
	}
	plan.Activities = cloneActivities(outcome.Activities)
	slog.Info("planner.ApplyUpdate: itinerary replaced",
		"planID", plan.ID, "activities", len(plan.Activities))
	return true
}

func cloneActivities(activities []models.Activity) []models.Activity {
	out := make([]models.Activity, len(activities))
	copy(out, activities)
	return out
}
