package models

import "errors"

// Tempo controls how densely days are packed.
type Tempo string

const (
	TempoRelaxed  Tempo = "relaxed"
	TempoModerate Tempo = "moderate"
	TempoFast     Tempo = "fast"
)

// Budget selects the spending tier used for cost scaling at generation time.
type Budget string

const (
	BudgetLow      Budget = "budget"
	BudgetStandard Budget = "standard"
	BudgetLuxury   Budget = "luxury"
)

// Transport is the preferred way of moving between stops.
type Transport string

const (
	TransportPublic    Transport = "public"
	TransportRideshare Transport = "rideshare"
	TransportPrivate   Transport = "private"
)

// ExplorationStyle biases generation toward landmarks or local spots.
type ExplorationStyle string

const (
	ExplorationTourist   ExplorationStyle = "tourist"
	ExplorationHiddenGem ExplorationStyle = "hidden_gem"
	ExplorationBalanced  ExplorationStyle = "balanced"
)

var (
	ErrEmptyCity              = errors.New("city is required")
	ErrInvalidTempo           = errors.New("invalid tempo")
	ErrInvalidBudget          = errors.New("invalid budget")
	ErrInvalidTransport       = errors.New("invalid transport")
	ErrInvalidExploration     = errors.New("invalid exploration style")
	ErrInvalidProfileDuration = errors.New("duration must be >= 1")
)

// IsValidTempo checks if the given tempo is supported.
func IsValidTempo(t Tempo) bool {
	switch t {
	case TempoRelaxed, TempoModerate, TempoFast:
		return true
	default:
		return false
	}
}

// IsValidBudget checks if the given budget tier is supported.
func IsValidBudget(b Budget) bool {
	switch b {
	case BudgetLow, BudgetStandard, BudgetLuxury:
		return true
	default:
		return false
	}
}

// IsValidTransport checks if the given transport mode is supported.
func IsValidTransport(t Transport) bool {
	switch t {
	case TransportPublic, TransportRideshare, TransportPrivate:
		return true
	default:
		return false
	}
}

// IsValidExplorationStyle checks if the given exploration style is supported.
func IsValidExplorationStyle(s ExplorationStyle) bool {
	switch s {
	case ExplorationTourist, ExplorationHiddenGem, ExplorationBalanced:
		return true
	default:
		return false
	}
}

// PreferenceProfile holds user-entered trip constraints from the onboarding
// survey. A profile is immutable for the lifetime of one planning session; a
// new onboarding pass produces a new profile and a new trip plan.
type PreferenceProfile struct {
	City             string           `json:"city"`
	Dates            string           `json:"dates,omitempty"`
	Duration         int              `json:"duration"`
	Tempo            Tempo            `json:"tempo"`
	Budget           Budget           `json:"budget"`
	Transport        Transport        `json:"transport"`
	Interests        []string         `json:"interests,omitempty"`
	Cuisines         []string         `json:"cuisines,omitempty"`
	ExplorationStyle ExplorationStyle `json:"explorationStyle"`
}

// Validate performs comprehensive validation on a PreferenceProfile.
func (p *PreferenceProfile) Validate() error {
	if p.City == "" {
		return ErrEmptyCity
	}
	if p.Duration < 1 {
		return ErrInvalidProfileDuration
	}
	if !IsValidTempo(p.Tempo) {
		return ErrInvalidTempo
	}
	if !IsValidBudget(p.Budget) {
		return ErrInvalidBudget
	}
	if !IsValidTransport(p.Transport) {
		return ErrInvalidTransport
	}
	if !IsValidExplorationStyle(p.ExplorationStyle) {
		return ErrInvalidExploration
	}
	return nil
}
