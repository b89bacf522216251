package genai

import (
	"fmt"
	"strings"

	"github.com/gezgin-ai/gezgin/internal/models"
)

// planUpdateInstruction tells the planner how to hand back itinerary edits.
// The merge protocol in the planner package recognizes exactly this shape.
const planUpdateInstruction = `
When you modify the itinerary, append the COMPLETE corrected plan (never a
partial patch) as a fenced block at the end of your reply:

` + "```json" + `
{"activities": [ ...every activity of the plan, with stable ids... ]}
` + "```" + `

Omit the block entirely when you are only conversing.`

// buildSystemPrompt renders the mode-specific system instruction.
func buildSystemPrompt(req GenerateRequest) string {
	switch req.Mode {
	case ModePlanner:
		return plannerPrompt(req)
	case ModeBriefing:
		return briefingPrompt(req)
	case ModeLiveCheck:
		return liveCheckPrompt(req)
	default:
		return guidePrompt(req)
	}
}

func plannerPrompt(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString("You are \"GezginAI Planner\". Task: Edit user's itinerary.\n\n")

	b.WriteString("User Preferences:\n")
	if p := req.Preferences; p != nil {
		fmt.Fprintf(&b, "- Tempo: %s\n- Budget: %s\n- Transport: %s\n", p.Tempo, p.Budget, p.Transport)
		fmt.Fprintf(&b, "- Interests (Vibes): %s\n", orDefault(strings.Join(p.Interests, ", "), "General"))
		fmt.Fprintf(&b, "- Favorite Cuisines: %s\n", orDefault(strings.Join(p.Cuisines, ", "), "No specific preference"))
		fmt.Fprintf(&b, "- Exploration Style: %s (If 'hidden_gem', avoid tourist traps. If 'tourist', prioritize landmarks).\n",
			orDefault(string(p.ExplorationStyle), "balanced"))
	}

	b.WriteString("\nCurrent Plan:\n")
	writePlanLines(&b, req.Plan, true)

	b.WriteString(`
Duties:
1. Recommend based on interests AND exploration style.
2. Suggest dining options matching their cuisine list.
3. Suggest logical revisions.
4. Keep it professional yet friendly.
`)
	b.WriteString(planUpdateInstruction)
	return b.String()
}

func briefingPrompt(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString("Role: Elite Travel Logistics Officer.\n")
	fmt.Fprintf(&b, "Task: Create a highly actionable JSON INTELLIGENCE BRIEFING for day %d of the itinerary.\n\n", maxInt(req.Day, 1))
	fmt.Fprintf(&b, "Destination: %s\nItinerary:\n", req.Plan.Destination)
	writePlanLines(&b, req.Plan, false)

	b.WriteString(`
You MUST return a JSON object with this exact schema:
{
  "headline": "Short, catchy, energetic title",
  "summary": "2-3 sentences summarizing the vibe of the day",
  "weather": {
    "temp": "Temperature range",
    "condition": "Short condition",
    "emoji": "🌤",
    "advice": "Crucial weather advice"
  },
  "dressCode": {
    "title": "Style",
    "description": "Specific advice based on venues"
  },
  "packing": ["Item 1", "Item 2"],
  "transport": "One critical tip",
  "culturalTip": "A local etiquette tip",
  "safetyTip": "A specific thing to watch out for"
}

IMPORTANT: Return ONLY the raw JSON string. Do not use Markdown code blocks.
`)
	return b.String()
}

func liveCheckPrompt(req GenerateRequest) string {
	day := maxInt(req.Day, 1)
	var b strings.Builder
	b.WriteString("Role: Real-time itinerary auditor.\n")
	fmt.Fprintf(&b, "Task: Audit the open/closed/busy status of today's stops (day %d) in %s.\n\n", day, req.Plan.Destination)

	b.WriteString("Stops to audit:\n")
	for _, a := range req.Plan.Activities {
		if a.EffectiveDay() != day {
			continue
		}
		fmt.Fprintf(&b, "- id=%s %s: %s (%s)\n", a.ID, a.Time, a.Activity, a.Location)
	}

	b.WriteString(`
You MUST return a JSON array, one record per stop, using the ids above:
[{"id": "...", "status": "open|busy|closed|alert", "message": "short note", "details": "one sentence"}]

IMPORTANT: Return ONLY the raw JSON string. Do not use Markdown code blocks.
`)
	return b.String()
}

func guidePrompt(req GenerateRequest) string {
	persona := "You are 'Wise', the user's witty travel companion."
	activityType := models.ActivityTypeGeneral
	if req.CurrentActivity != nil && req.CurrentActivity.Type != "" {
		activityType = req.CurrentActivity.Type
	}
	switch activityType {
	case models.ActivityTypeCulture:
		persona = "You are 'Wise the Curator'. You speak with sophistication and passion for history."
	case models.ActivityTypeFood:
		persona = "You are 'Wise the Gourmand'. You are obsessed with flavors and culinary secrets."
	case models.ActivityTypeNature:
		persona = "You are 'Zen Wise'. Calm and deeply connected to nature."
	}

	locationContext := "Current Location: Unknown"
	if req.CurrentActivity != nil {
		locationContext = fmt.Sprintf("Current Stop: %s. Type: %s", req.CurrentActivity.Activity, activityType)
	} else if req.Location != nil && req.Location.Name != "" {
		locationContext = fmt.Sprintf("Current Location: %s", req.Location.Name)
	}

	var interests, style string
	if req.Preferences != nil {
		interests = strings.Join(req.Preferences.Interests, ", ")
		style = string(req.Preferences.ExplorationStyle)
	}

	return fmt.Sprintf(`%s

%s
User Interests: %s
User Style: %s

RULES:
1. Stay in character!
2. Keep it SHORT (Max 2-3 sentences).
`, persona, locationContext, interests, style)
}

// writePlanLines renders the plan context lines shared by several prompts.
func writePlanLines(b *strings.Builder, plan models.TripPlan, withStatus bool) {
	for _, a := range plan.Activities {
		if withStatus {
			fmt.Fprintf(b, "- [day %d] %s: %s (%s)\n", a.EffectiveDay(), a.Time, a.Activity, a.Status)
		} else {
			fmt.Fprintf(b, "- [day %d] %s: %s\n", a.EffectiveDay(), a.Time, a.Activity)
		}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
