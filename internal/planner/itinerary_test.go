package planner

import (
	"testing"

	"github.com/gezgin-ai/gezgin/internal/models"
)

func chicagoProfile(budget models.Budget) models.PreferenceProfile {
	return models.PreferenceProfile{
		City:             "Chicago, IL",
		Dates:            "Oct 12 - Oct 14",
		Duration:         2,
		Tempo:            models.TempoModerate,
		Budget:           budget,
		Transport:        models.TransportPublic,
		ExplorationStyle: models.ExplorationBalanced,
	}
}

func TestGeneratePlanChicagoLuxury(t *testing.T) {
	plan, err := GeneratePlan(chicagoProfile(models.BudgetLuxury))
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	byTitle := make(map[string]models.Activity)
	for _, a := range plan.Activities {
		byTitle[a.Activity] = a
	}

	// paid stops are tripled and shifted one tier up
	art := byTitle["Art Institute of Chicago"]
	if art.EstimatedCost != 105 {
		t.Errorf("expected Art Institute cost 105 under luxury, got %v", art.EstimatedCost)
	}
	if art.PriceLevel != models.PriceLevelPricey {
		t.Errorf("expected price level shifted to %q, got %q", models.PriceLevelPricey, art.PriceLevel)
	}

	// free stops stay free and keep their tier
	park := byTitle["Millennium Park & Cloud Gate"]
	if park.EstimatedCost != 0 {
		t.Errorf("free stop gained a cost under luxury: %v", park.EstimatedCost)
	}
	if park.PriceLevel != models.PriceLevelFree {
		t.Errorf("free stop changed tier: %q", park.PriceLevel)
	}

	shopping := byTitle["Magnificent Mile Shopping"]
	if shopping.EstimatedCost != 450 {
		t.Errorf("expected shopping cost 450 under luxury, got %v", shopping.EstimatedCost)
	}
	if shopping.PriceLevel != models.PriceLevelLuxury {
		t.Errorf("expected shopping shifted to %q, got %q", models.PriceLevelLuxury, shopping.PriceLevel)
	}
}

func TestGeneratePlanBudgetHalvesAndRounds(t *testing.T) {
	plan, err := GeneratePlan(chicagoProfile(models.BudgetLow))
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	for _, a := range plan.Activities {
		switch a.Activity {
		case "Art Institute of Chicago": // 35 * 0.5 = 17.5 rounds to 18
			if a.EstimatedCost != 18 {
				t.Errorf("expected 18, got %v", a.EstimatedCost)
			}
		case "Lunch at Portillo's Hot Dogs": // 15 * 0.5 = 7.5 rounds to 8
			if a.EstimatedCost != 8 {
				t.Errorf("expected 8, got %v", a.EstimatedCost)
			}
			if a.PriceLevel != models.PriceLevelCheap {
				t.Errorf("cheapest paid tier must not shift below $, got %q", a.PriceLevel)
			}
		}
	}
}

func TestGeneratePlanGenericCityCoversEveryDay(t *testing.T) {
	profile := chicagoProfile(models.BudgetStandard)
	profile.City = "Lisbon, Portugal"
	profile.Duration = 4

	plan, err := GeneratePlan(profile)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if plan.Status != models.TripPlanStatusDraft {
		t.Errorf("new plan must start as draft, got %s", plan.Status)
	}

	for day := 1; day <= 4; day++ {
		if len(ActivitiesForDay(plan, day)) == 0 {
			t.Errorf("day %d has no activities", day)
		}
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("generated plan failed validation: %v", err)
	}
}

func TestGeneratePlanRejectsInvalidProfile(t *testing.T) {
	profile := chicagoProfile(models.BudgetStandard)
	profile.Duration = 0
	if _, err := GeneratePlan(profile); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestShiftPriceLevelBounds(t *testing.T) {
	tests := []struct {
		level  string
		budget models.Budget
		want   string
	}{
		{models.PriceLevelLuxury, models.BudgetLuxury, models.PriceLevelLuxury},
		{models.PriceLevelCheap, models.BudgetLow, models.PriceLevelCheap},
		{models.PriceLevelFree, models.BudgetLuxury, models.PriceLevelFree},
		{models.PriceLevelModerate, models.BudgetStandard, models.PriceLevelModerate},
		{models.PriceLevelPricey, models.BudgetLow, models.PriceLevelModerate},
	}
	for _, tt := range tests {
		if got := shiftPriceLevel(tt.level, tt.budget); got != tt.want {
			t.Errorf("shiftPriceLevel(%q, %s) = %q, want %q", tt.level, tt.budget, got, tt.want)
		}
	}
}
