// Package store provides storage backends for Gezgin.
//
// This file implements a PostgreSQL-backed store for trip plans, profiles,
// and credentials.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/gezgin-ai/gezgin/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveTripPlan stores or replaces a plan as a JSON payload row.
func (s *PostgresStore) SaveTripPlan(p models.TripPlan) error {
	payload, err := marshalPlan(p)
	if err != nil {
		slog.Error("PostgresStore.SaveTripPlan marshal failed", "error", err, "planID", p.ID)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO trip_plans (id, payload, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at`,
		p.ID, payload, p.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.SaveTripPlan failed", "error", err, "planID", p.ID)
		return fmt.Errorf("failed to save trip plan %s: %w", p.ID, err)
	}
	slog.Debug("PostgresStore.SaveTripPlan succeeded", "planID", p.ID)
	return nil
}

// GetTripPlan retrieves a plan by id. A missing plan yields (nil, nil).
func (s *PostgresStore) GetTripPlan(id string) (*models.TripPlan, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM trip_plans WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore.GetTripPlan not found", "planID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetTripPlan failed", "error", err, "planID", id)
		return nil, fmt.Errorf("failed to query trip plan %s: %w", id, err)
	}
	return unmarshalPlan(payload)
}

// ListTripPlans returns all stored plans, newest-first by creation time.
func (s *PostgresStore) ListTripPlans() ([]models.TripPlan, error) {
	rows, err := s.db.Query(`SELECT payload FROM trip_plans ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("PostgresStore.ListTripPlans query failed", "error", err)
		return nil, fmt.Errorf("failed to query trip plans: %w", err)
	}
	defer rows.Close()

	var plans []models.TripPlan
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			slog.Error("PostgresStore.ListTripPlans scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan trip plan row: %w", err)
		}
		p, err := unmarshalPlan(payload)
		if err != nil {
			slog.Error("PostgresStore.ListTripPlans unmarshal failed", "error", err)
			continue
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore.ListTripPlans rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate trip plan rows: %w", err)
	}
	slog.Debug("PostgresStore.ListTripPlans succeeded", "count", len(plans))
	return plans, nil
}

// DeleteTripPlan removes a plan row; the active pointer is cleared if it
// referenced the deleted plan.
func (s *PostgresStore) DeleteTripPlan(id string) error {
	_, err := s.db.Exec(`DELETE FROM trip_plans WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore.DeleteTripPlan failed", "error", err, "planID", id)
		return fmt.Errorf("failed to delete trip plan %s: %w", id, err)
	}
	active, err := s.GetActivePlanID()
	if err == nil && active == id {
		if err := s.SetActivePlanID(""); err != nil {
			slog.Warn("PostgresStore.DeleteTripPlan failed to clear active plan", "error", err, "planID", id)
		}
	}
	slog.Debug("PostgresStore.DeleteTripPlan succeeded", "planID", id)
	return nil
}

// SetActivePlanID records the active plan id in the settings table.
func (s *PostgresStore) SetActivePlanID(id string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, activePlanKey, id)
	if err != nil {
		slog.Error("PostgresStore.SetActivePlanID failed", "error", err, "planID", id)
		return fmt.Errorf("failed to set active plan id: %w", err)
	}
	return nil
}

// GetActivePlanID returns the active plan id, or "" when none recorded.
func (s *PostgresStore) GetActivePlanID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, activePlanKey).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetActivePlanID failed", "error", err)
		return "", fmt.Errorf("failed to query active plan id: %w", err)
	}
	return id, nil
}

// SaveProfile stores the single preference profile row.
func (s *PostgresStore) SaveProfile(profile models.PreferenceProfile) error {
	payload, err := marshalProfile(profile)
	if err != nil {
		slog.Error("PostgresStore.SaveProfile marshal failed", "error", err)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO profiles (id, payload) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`, payload)
	if err != nil {
		slog.Error("PostgresStore.SaveProfile failed", "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored preference profile, or nil if none saved.
func (s *PostgresStore) GetProfile() (*models.PreferenceProfile, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM profiles WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetProfile failed", "error", err)
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return unmarshalProfile(payload)
}

// SaveCredential stores or replaces the credential record keyed by email.
func (s *PostgresStore) SaveCredential(c models.Credential) error {
	_, err := s.db.Exec(`INSERT INTO credentials (email, name, password) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, password = EXCLUDED.password`,
		c.Email, c.Name, c.Password)
	if err != nil {
		slog.Error("PostgresStore.SaveCredential failed", "error", err, "email", c.Email)
		return fmt.Errorf("failed to save credential for %s: %w", c.Email, err)
	}
	return nil
}

// GetCredential returns the credential for an email, or nil if absent.
func (s *PostgresStore) GetCredential(email string) (*models.Credential, error) {
	var c models.Credential
	err := s.db.QueryRow(`SELECT email, name, password FROM credentials WHERE email = $1`, email).
		Scan(&c.Email, &c.Name, &c.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetCredential failed", "error", err, "email", email)
		return nil, fmt.Errorf("failed to query credential for %s: %w", email, err)
	}
	return &c, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
