// Package store provides storage backends for Gezgin.
//
// It includes an in-memory store for tests and ephemeral runs, plus SQLite and
// PostgreSQL stores for durable persistence of trip plans, the preference
// profile, and the credential record.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/gezgin-ai/gezgin/internal/models"
)

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option configures store options.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path as the store DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string as the store DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". File paths and
// anything that is not a recognizable Postgres connection string count as
// SQLite.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// Store is the persistence boundary for the planning session. Trip plans are
// stored as opaque JSON payloads; listing returns newest-first by creation
// time to match the draft store's ordering convention.
type Store interface {
	SaveTripPlan(p models.TripPlan) error
	GetTripPlan(id string) (*models.TripPlan, error)
	ListTripPlans() ([]models.TripPlan, error)
	DeleteTripPlan(id string) error

	SetActivePlanID(id string) error
	GetActivePlanID() (string, error)

	SaveProfile(profile models.PreferenceProfile) error
	GetProfile() (*models.PreferenceProfile, error)

	SaveCredential(c models.Credential) error
	GetCredential(email string) (*models.Credential, error)

	Close() error
}

// InMemoryStore is a mutex-guarded in-memory Store implementation.
type InMemoryStore struct {
	mu           sync.RWMutex
	plans        map[string]models.TripPlan
	activePlanID string
	profile      *models.PreferenceProfile
	credentials  map[string]models.Credential
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		plans:       make(map[string]models.TripPlan),
		credentials: make(map[string]models.Credential),
	}
}

// SaveTripPlan stores or replaces a plan keyed by its id.
func (s *InMemoryStore) SaveTripPlan(p models.TripPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p.Clone()
	return nil
}

// GetTripPlan returns the plan with the given id, or nil if absent.
func (s *InMemoryStore) GetTripPlan(id string) (*models.TripPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

// ListTripPlans returns all plans sorted newest-first by creation time.
func (s *InMemoryStore) ListTripPlans() ([]models.TripPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TripPlan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// DeleteTripPlan removes the plan with the given id. Deleting a missing plan
// is a no-op.
func (s *InMemoryStore) DeleteTripPlan(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
	if s.activePlanID == id {
		s.activePlanID = ""
	}
	return nil
}

// SetActivePlanID records which plan is currently active.
func (s *InMemoryStore) SetActivePlanID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePlanID = id
	return nil
}

// GetActivePlanID returns the active plan id, or "" when none is active.
func (s *InMemoryStore) GetActivePlanID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activePlanID, nil
}

// SaveProfile stores the current preference profile.
func (s *InMemoryStore) SaveProfile(profile models.PreferenceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := profile
	s.profile = &p
	return nil
}

// GetProfile returns the stored preference profile, or nil if none saved.
func (s *InMemoryStore) GetProfile() (*models.PreferenceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	return &p, nil
}

// SaveCredential stores or replaces the credential record keyed by email.
func (s *InMemoryStore) SaveCredential(c models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[c.Email] = c
	return nil
}

// GetCredential returns the credential for an email, or nil if absent.
func (s *InMemoryStore) GetCredential(email string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[email]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
