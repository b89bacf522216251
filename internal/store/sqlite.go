// Package store provides storage backends for Gezgin.
//
// This file implements an SQLite-backed store for trip plans, profiles, and
// credentials.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/gezgin-ai/gezgin/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
	// activePlanKey is the settings-table key holding the active plan id.
	activePlanKey = "active_plan_id"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveTripPlan stores or replaces a plan as a JSON payload row.
func (s *SQLiteStore) SaveTripPlan(p models.TripPlan) error {
	payload, err := marshalPlan(p)
	if err != nil {
		slog.Error("SQLiteStore.SaveTripPlan marshal failed", "error", err, "planID", p.ID)
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO trip_plans (id, payload, created_at) VALUES (?, ?, ?)`,
		p.ID, payload, p.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.SaveTripPlan failed", "error", err, "planID", p.ID)
		return fmt.Errorf("failed to save trip plan %s: %w", p.ID, err)
	}
	slog.Debug("SQLiteStore.SaveTripPlan succeeded", "planID", p.ID)
	return nil
}

// GetTripPlan retrieves a plan by id. A missing plan yields (nil, nil).
func (s *SQLiteStore) GetTripPlan(id string) (*models.TripPlan, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM trip_plans WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore.GetTripPlan not found", "planID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetTripPlan failed", "error", err, "planID", id)
		return nil, fmt.Errorf("failed to query trip plan %s: %w", id, err)
	}
	return unmarshalPlan(payload)
}

// ListTripPlans returns all stored plans, newest-first by creation time.
func (s *SQLiteStore) ListTripPlans() ([]models.TripPlan, error) {
	rows, err := s.db.Query(`SELECT payload FROM trip_plans ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore.ListTripPlans query failed", "error", err)
		return nil, fmt.Errorf("failed to query trip plans: %w", err)
	}
	defer rows.Close()

	var plans []models.TripPlan
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			slog.Error("SQLiteStore.ListTripPlans scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan trip plan row: %w", err)
		}
		p, err := unmarshalPlan(payload)
		if err != nil {
			slog.Error("SQLiteStore.ListTripPlans unmarshal failed", "error", err)
			continue
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore.ListTripPlans rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate trip plan rows: %w", err)
	}
	slog.Debug("SQLiteStore.ListTripPlans succeeded", "count", len(plans))
	return plans, nil
}

// DeleteTripPlan removes a plan row; the active pointer is cleared if it
// referenced the deleted plan.
func (s *SQLiteStore) DeleteTripPlan(id string) error {
	_, err := s.db.Exec(`DELETE FROM trip_plans WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore.DeleteTripPlan failed", "error", err, "planID", id)
		return fmt.Errorf("failed to delete trip plan %s: %w", id, err)
	}
	active, err := s.GetActivePlanID()
	if err == nil && active == id {
		if err := s.SetActivePlanID(""); err != nil {
			slog.Warn("SQLiteStore.DeleteTripPlan failed to clear active plan", "error", err, "planID", id)
		}
	}
	slog.Debug("SQLiteStore.DeleteTripPlan succeeded", "planID", id)
	return nil
}

// SetActivePlanID records the active plan id in the settings table.
func (s *SQLiteStore) SetActivePlanID(id string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, activePlanKey, id)
	if err != nil {
		slog.Error("SQLiteStore.SetActivePlanID failed", "error", err, "planID", id)
		return fmt.Errorf("failed to set active plan id: %w", err)
	}
	return nil
}

// GetActivePlanID returns the active plan id, or "" when none recorded.
func (s *SQLiteStore) GetActivePlanID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, activePlanKey).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetActivePlanID failed", "error", err)
		return "", fmt.Errorf("failed to query active plan id: %w", err)
	}
	return id, nil
}

// SaveProfile stores the single preference profile row.
func (s *SQLiteStore) SaveProfile(profile models.PreferenceProfile) error {
	payload, err := marshalProfile(profile)
	if err != nil {
		slog.Error("SQLiteStore.SaveProfile marshal failed", "error", err)
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO profiles (id, payload) VALUES (1, ?)`, payload)
	if err != nil {
		slog.Error("SQLiteStore.SaveProfile failed", "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored preference profile, or nil if none saved.
func (s *SQLiteStore) GetProfile() (*models.PreferenceProfile, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM profiles WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetProfile failed", "error", err)
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return unmarshalProfile(payload)
}

// SaveCredential stores or replaces the credential record keyed by email.
func (s *SQLiteStore) SaveCredential(c models.Credential) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO credentials (email, name, password) VALUES (?, ?, ?)`,
		c.Email, c.Name, c.Password)
	if err != nil {
		slog.Error("SQLiteStore.SaveCredential failed", "error", err, "email", c.Email)
		return fmt.Errorf("failed to save credential for %s: %w", c.Email, err)
	}
	return nil
}

// GetCredential returns the credential for an email, or nil if absent.
func (s *SQLiteStore) GetCredential(email string) (*models.Credential, error) {
	var c models.Credential
	err := s.db.QueryRow(`SELECT email, name, password FROM credentials WHERE email = ?`, email).
		Scan(&c.Email, &c.Name, &c.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetCredential failed", "error", err, "email", email)
		return nil, fmt.Errorf("failed to query credential for %s: %w", email, err)
	}
	return &c, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
