package planner

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
	"github.com/samber/lo"

	"github.com/gezgin-ai/gezgin/internal/models"
)

// earthRadiusMiles is the mean Earth radius used for walking distances.
const earthRadiusMiles = 3958.8

// fallbackCosts estimates a stop's cost by type when no explicit estimate is
// carried. Shopping, nature and general stops intentionally estimate to zero.
var fallbackCosts = map[models.ActivityType]float64{
	models.ActivityTypeFood:      35,
	models.ActivityTypeCulture:   25,
	models.ActivityTypeNightlife: 50,
	models.ActivityTypeSport:     40,
}

// DaySummary is the derived per-day dashboard row.
type DaySummary struct {
	Day             int     `json:"day"`
	Stops           int     `json:"stops"`
	DistanceMiles   float64 `json:"distanceMiles"`
	EstimatedBudget float64 `json:"estimatedBudget"`
}

// ActivitiesForDay returns the activities scheduled for the given day, in plan
// order. Activities with no day set belong to day 1.
func ActivitiesForDay(plan models.TripPlan, day int) []models.Activity {
	return lo.Filter(plan.Activities, func(a models.Activity, _ int) bool {
		return a.EffectiveDay() == day
	})
}

// Days lists the distinct days that have at least one activity, ascending.
func Days(plan models.TripPlan) []int {
	days := lo.Uniq(lo.Map(plan.Activities, func(a models.Activity, _ int) int {
		return a.EffectiveDay()
	}))
	sort.Ints(days)
	return days
}

// DayDistance sums the great-circle distance in miles over consecutive pairs
// of a day's activities, in plan order. Pairs where either side lacks
// coordinates contribute nothing; the rest of the chain still counts. Callers
// round for display only.
func DayDistance(activities []models.Activity) float64 {
	var total float64
	for i := 0; i < len(activities)-1; i++ {
		a, b := activities[i], activities[i+1]
		if !a.HasCoordinates() || !b.HasCoordinates() {
			continue
		}
		total += distanceMiles(a.Lat, a.Lng, b.Lat, b.Lng)
	}
	return total
}

func distanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * earthRadiusMiles
}

// DayBudget sums a day's estimated spend. Stops without an explicit estimate
// fall back to a per-type figure, except free stops which always cost zero.
// Pure: it never mutates the activities' stored costs.
func DayBudget(activities []models.Activity) float64 {
	return lo.SumBy(activities, estimateCost)
}

func estimateCost(a models.Activity) float64 {
	if a.EstimatedCost > 0 {
		return a.EstimatedCost
	}
	if a.PriceLevel == models.PriceLevelFree {
		return 0
	}
	return fallbackCosts[a.Type]
}

// SummaryForDay derives the dashboard metrics for one day. The distance is
// rounded to one decimal here, at the display boundary.
func SummaryForDay(plan models.TripPlan, day int) DaySummary {
	activities := ActivitiesForDay(plan, day)
	return DaySummary{
		Day:             day,
		Stops:           len(activities),
		DistanceMiles:   math.Round(DayDistance(activities)*10) / 10,
		EstimatedBudget: DayBudget(activities),
	}
}

// Summaries derives the dashboard rows for every populated day.
func Summaries(plan models.TripPlan) []DaySummary {
	return lo.Map(Days(plan), func(day int, _ int) DaySummary {
		return SummaryForDay(plan, day)
	})
}

// TotalBudget sums the estimated spend across the whole plan.
func TotalBudget(plan models.TripPlan) float64 {
	return DayBudget(plan.Activities)
}
