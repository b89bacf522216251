// Package planner implements the itinerary data model operations for Gezgin:
// plan generation, day-scoped aggregation, the merge protocol for generator
// responses, advisory payload validation, and session state.
package planner

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/gezgin-ai/gezgin/internal/models"
	"github.com/gezgin-ai/gezgin/internal/util"
)

// templateActivity is one canned stop used to seed a fresh plan.
type templateActivity struct {
	day        int
	time       string
	title      string
	location   string
	actType    models.ActivityType
	priceLevel string
	cost       float64
	bookingURL string
	imageURL   string
	lat, lng   float64
	status     models.ActivityStatus
}

// chicagoTemplate mirrors the curated two-day Chicago itinerary the product
// ships as its showcase plan.
var chicagoTemplate = []templateActivity{
	{1, "09:00", "Millennium Park & Cloud Gate", "201 E Randolph St", models.ActivityTypeNature, models.PriceLevelFree, 0, "", "https://images.unsplash.com/photo-1596726857999-52d334584285?q=80&w=300&auto=format&fit=crop", 41.8826, -87.6226, models.ActivityStatusPending},
	{1, "11:30", "Art Institute of Chicago", "111 S Michigan Ave", models.ActivityTypeCulture, models.PriceLevelModerate, 35, "https://sales.artic.edu/", "https://images.unsplash.com/photo-1563297241-113331b2628a?q=80&w=300&auto=format&fit=crop", 41.8796, -87.6237, models.ActivityStatusBooked},
	{1, "13:30", "Giordano's Pizza (Deep Dish)", "223 W Jackson Blvd", models.ActivityTypeFood, models.PriceLevelModerate, 30, "https://giordanos.com/locations/jackson-blvd-downtown-central-loop/", "https://images.unsplash.com/photo-1595295333158-4742f28fbd85?q=80&w=300&auto=format&fit=crop", 41.8781, -87.6330, models.ActivityStatusPending},
	{1, "16:00", "Chicago Riverwalk Walk", "Riverwalk", models.ActivityTypeNature, models.PriceLevelFree, 0, "", "https://images.unsplash.com/photo-1494522855154-9297ac14b55f?q=80&w=300&auto=format&fit=crop", 41.8885, -87.6288, models.ActivityStatusPending},
	{1, "19:00", "Live Music at Jazz Showcase", "806 S Plymouth Ct", models.ActivityTypeNightlife, models.PriceLevelModerate, 40, "https://www.jazzshowcase.com/", "https://images.unsplash.com/photo-1511192336575-5a79af67a629?q=80&w=300&auto=format&fit=crop", 41.8710, -87.6295, models.ActivityStatusBooked},
	{2, "10:00", "Navy Pier & Centennial Wheel", "600 E Grand Ave", models.ActivityTypeNature, models.PriceLevelModerate, 20, "", "https://images.unsplash.com/photo-1619468160877-e29f37f37803?q=80&w=300&auto=format&fit=crop", 41.8917, -87.6043, models.ActivityStatusPending},
	{2, "13:00", "Lunch at Portillo's Hot Dogs", "100 W Ontario St", models.ActivityTypeFood, models.PriceLevelCheap, 15, "", "https://images.unsplash.com/photo-1621855293488-81d77b8f9e20?q=80&w=300&auto=format&fit=crop", 41.8935, -87.6301, models.ActivityStatusPending},
	{2, "15:00", "Magnificent Mile Shopping", "Michigan Ave", models.ActivityTypeShopping, models.PriceLevelPricey, 150, "", "https://images.unsplash.com/photo-1669920677579-2d4e7498c366?q=80&w=300&auto=format&fit=crop", 41.8948, -87.6242, models.ActivityStatusPending},
}

// GeneratePlan produces a fresh draft plan from an onboarding profile. Every
// day in [1, duration] is guaranteed at least one activity so the day view is
// never empty. The budget multiplier is applied exactly once, here.
func GeneratePlan(profile models.PreferenceProfile) (models.TripPlan, error) {
	if err := profile.Validate(); err != nil {
		return models.TripPlan{}, err
	}

	var activities []models.Activity
	if strings.Contains(strings.ToLower(profile.City), "chicago") {
		activities = fromTemplate(chicagoTemplate)
	} else {
		activities = arrivalDayActivities(profile.City)
	}
	activities = fillEmptyDays(activities, profile.City, profile.Duration)
	activities = applyBudget(activities, profile.Budget)

	plan := models.TripPlan{
		ID:          util.GeneratePlanID(),
		CreatedAt:   time.Now().UnixMilli(),
		Destination: profile.City,
		Dates:       profile.Dates,
		Duration:    profile.Duration,
		Status:      models.TripPlanStatusDraft,
		Activities:  activities,
	}
	slog.Debug("planner.GeneratePlan: plan generated",
		"planID", plan.ID, "city", profile.City, "days", profile.Duration, "activities", len(activities))
	return plan, nil
}

func fromTemplate(tmpl []templateActivity) []models.Activity {
	out := make([]models.Activity, 0, len(tmpl))
	for _, t := range tmpl {
		out = append(out, models.Activity{
			ID:            util.GenerateActivityID(),
			Day:           t.day,
			Time:          t.time,
			Activity:      t.title,
			Location:      t.location,
			Status:        t.status,
			BookingURL:    t.bookingURL,
			ImageURL:      t.imageURL,
			Lat:           t.lat,
			Lng:           t.lng,
			Type:          t.actType,
			PriceLevel:    t.priceLevel,
			EstimatedCost: t.cost,
		})
	}
	return out
}

// arrivalDayActivities is the generic day-1 seed for cities without a curated
// template.
func arrivalDayActivities(city string) []models.Activity {
	return []models.Activity{
		{
			ID: util.GenerateActivityID(), Day: 1, Time: "14:00",
			Activity: "Arrive in " + city, Location: "Airport / Central Station",
			Status: models.ActivityStatusPending, Type: models.ActivityTypeGeneral,
			PriceLevel: models.PriceLevelFree, EstimatedCost: 0,
		},
		{
			ID: util.GenerateActivityID(), Day: 1, Time: "16:00",
			Activity: "Hotel Check-in & Refresh", Location: "City Center",
			Status: models.ActivityStatusPending, Type: models.ActivityTypeGeneral,
			PriceLevel: models.PriceLevelPricey, EstimatedCost: 200,
		},
		{
			ID: util.GenerateActivityID(), Day: 1, Time: "19:00",
			Activity: "Welcome Dinner", Location: "Local Favorite",
			Status: models.ActivityStatusPending, Type: models.ActivityTypeFood,
			PriceLevel: models.PriceLevelModerate, EstimatedCost: 60,
		},
	}
}

// fillEmptyDays guarantees at least one placeholder stop for every day in
// [1, duration] that the template left empty.
func fillEmptyDays(activities []models.Activity, city string, duration int) []models.Activity {
	populated := make(map[int]bool)
	for _, a := range activities {
		populated[a.EffectiveDay()] = true
	}
	for day := 1; day <= duration; day++ {
		if populated[day] {
			continue
		}
		activities = append(activities, models.Activity{
			ID:         util.GenerateActivityID(),
			Day:        day,
			Time:       "10:00",
			Activity:   "Explore " + city,
			Location:   "City Center",
			Status:     models.ActivityStatusPending,
			Type:       models.ActivityTypeGeneral,
			PriceLevel: models.PriceLevelFree,
		})
	}
	return activities
}

// budgetMultiplier returns the one-time cost scaling factor for a tier.
func budgetMultiplier(b models.Budget) float64 {
	switch b {
	case models.BudgetLuxury:
		return 3
	case models.BudgetLow:
		return 0.5
	default:
		return 1
	}
}

// applyBudget scales estimated costs by the budget multiplier, once, at
// generation time. Free items are never rescaled and never given a floor.
// The price level shift is a display-only refinement derived from the same
// tier decision; it must not feed back into the cost.
func applyBudget(activities []models.Activity, budget models.Budget) []models.Activity {
	mult := budgetMultiplier(budget)
	for i := range activities {
		a := &activities[i]
		if a.EstimatedCost == 0 {
			continue
		}
		a.EstimatedCost = math.Round(a.EstimatedCost * mult)
		a.PriceLevel = shiftPriceLevel(a.PriceLevel, budget)
	}
	return activities
}

// shiftPriceLevel moves the display tier one step up for luxury and one step
// down for budget.
func shiftPriceLevel(level string, budget models.Budget) string {
	switch budget {
	case models.BudgetLuxury:
		switch level {
		case models.PriceLevelCheap:
			return models.PriceLevelModerate
		case models.PriceLevelModerate:
			return models.PriceLevelPricey
		case models.PriceLevelPricey:
			return models.PriceLevelLuxury
		}
	case models.BudgetLow:
		switch level {
		case models.PriceLevelLuxury:
			return models.PriceLevelPricey
		case models.PriceLevelPricey:
			return models.PriceLevelModerate
		case models.PriceLevelModerate:
			return models.PriceLevelCheap
		}
	}
	return level
}
