package models

import "testing"

func TestEffectiveDayDefaultsToOne(t *testing.T) {
	a := Activity{ID: "a1", Activity: "Walk"}
	if a.EffectiveDay() != 1 {
		t.Errorf("expected unset day to default to 1, got %d", a.EffectiveDay())
	}
	a.Day = 3
	if a.EffectiveDay() != 3 {
		t.Errorf("expected day 3, got %d", a.EffectiveDay())
	}
}

func TestActivityValidate(t *testing.T) {
	tests := []struct {
		name    string
		act     Activity
		wantErr error
	}{
		{"valid", Activity{ID: "a1", Activity: "Museum", Day: 1}, nil},
		{"missing id", Activity{Activity: "Museum"}, ErrEmptyActivityID},
		{"missing title", Activity{ID: "a1"}, ErrEmptyActivityTitle},
		{"negative cost", Activity{ID: "a1", Activity: "Museum", EstimatedCost: -5}, ErrNegativeCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.act.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTripPlanValidateRejectsDuplicateIDs(t *testing.T) {
	p := TripPlan{
		ID:          "p1",
		Destination: "Chicago, IL",
		Activities: []Activity{
			{ID: "a1", Activity: "Park"},
			{ID: "a1", Activity: "Museum"},
		},
	}
	if err := p.Validate(); err != ErrDuplicateActivity {
		t.Errorf("expected ErrDuplicateActivity, got %v", err)
	}
}

func TestNextStopSkipsCompleted(t *testing.T) {
	p := TripPlan{
		ID:          "p1",
		Destination: "Chicago, IL",
		Activities: []Activity{
			{ID: "a1", Activity: "Park", Status: ActivityStatusCompleted},
			{ID: "a2", Activity: "Museum", Status: ActivityStatusBooked},
			{ID: "a3", Activity: "Dinner", Status: ActivityStatusPending},
		},
	}
	next := p.NextStop()
	if next == nil || next.ID != "a2" {
		t.Fatalf("expected next stop a2, got %+v", next)
	}

	for i := range p.Activities {
		p.Activities[i].Status = ActivityStatusCompleted
	}
	if p.NextStop() != nil {
		t.Error("expected nil next stop when all activities completed")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := TripPlan{ID: "p1", Destination: "Rome", Activities: []Activity{{ID: "a1", Activity: "Colosseum"}}}
	c := p.Clone()
	c.Activities[0].Activity = "Forum"
	if p.Activities[0].Activity != "Colosseum" {
		t.Error("mutating the clone changed the original plan")
	}
}

func TestIsValidEnums(t *testing.T) {
	if !IsValidActivityStatus(ActivityStatusBooked) || IsValidActivityStatus("cancelled") {
		t.Error("activity status validation incorrect")
	}
	if !IsValidActivityType(ActivityTypeFood) || IsValidActivityType("karaoke") {
		t.Error("activity type validation incorrect")
	}
	if !LiveStatusClosed.NeedsAttention() || LiveStatusOpen.NeedsAttention() {
		t.Error("live status attention rule incorrect")
	}
}

func TestProfileValidate(t *testing.T) {
	valid := PreferenceProfile{
		City:             "Chicago",
		Duration:         2,
		Tempo:            TempoModerate,
		Budget:           BudgetLuxury,
		Transport:        TransportPublic,
		ExplorationStyle: ExplorationBalanced,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*PreferenceProfile)
		wantErr error
	}{
		{"empty city", func(p *PreferenceProfile) { p.City = "" }, ErrEmptyCity},
		{"zero duration", func(p *PreferenceProfile) { p.Duration = 0 }, ErrInvalidProfileDuration},
		{"bad tempo", func(p *PreferenceProfile) { p.Tempo = "frantic" }, ErrInvalidTempo},
		{"bad budget", func(p *PreferenceProfile) { p.Budget = "free" }, ErrInvalidBudget},
		{"bad transport", func(p *PreferenceProfile) { p.Transport = "teleport" }, ErrInvalidTransport},
		{"bad style", func(p *PreferenceProfile) { p.ExplorationStyle = "extreme" }, ErrInvalidExploration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIResponseBuilder(t *testing.T) {
	resp := NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage("done").
		WithResult(42).
		Build()
	if resp.Status != "ok" || resp.Message != "done" || resp.Result != 42 {
		t.Errorf("builder produced unexpected response: %+v", resp)
	}
	if Error("boom").Status != string(APIStatusError) {
		t.Error("Error helper did not set error status")
	}
	if Degraded("fallback", nil).Status != string(APIStatusDegraded) {
		t.Error("Degraded helper did not set degraded status")
	}
}
