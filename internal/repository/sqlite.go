package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vladicamp/campvote/internal/models"
)

// Repository provides access to the local device store: the device lock,
// the single draft slot per device, and cached settings. Everything here
// is device/browser-scoped state; finished ballots live in the remote
// row store, not in this database.
type Repository struct {
	db *sql.DB
}

// New creates a new Repository backed by a SQLite database at dbPath
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// NewWithDB wraps an existing database handle (for tests)
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			locked BOOLEAN NOT NULL DEFAULT 0,
			locked_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS drafts (
			device_id TEXT PRIMARY KEY,
			answers TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_devices_locked ON devices(locked)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// ==================== Device Methods ====================

// IsLocked reports whether the device has already submitted a ballot
func (r *Repository) IsLocked(ctx context.Context, deviceID string) (bool, error) {
	var locked bool
	err := r.db.QueryRowContext(ctx, `SELECT locked FROM devices WHERE id = ?`, deviceID).Scan(&locked)
	if err == sql.ErrNoRows {
		return false, nil // unknown device is unlocked
	}
	if err != nil {
		return false, err
	}
	return locked, nil
}

// SetLocked marks the device as having voted. Idempotent: locking an
// already-locked device leaves it locked.
func (r *Repository) SetLocked(ctx context.Context, deviceID string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, locked, locked_at) VALUES (?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET locked = 1, locked_at = excluded.locked_at
	`, deviceID, now)
	return err
}

// ClearLock removes the lock for a device. Only the lock is cleared;
// any submission already persisted remotely is untouched.
func (r *Repository) ClearLock(ctx context.Context, deviceID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE devices SET locked = 0, locked_at = NULL WHERE id = ?`, deviceID)
	return err
}

// CountLockedDevices returns how many devices have submitted
func (r *Repository) CountLockedDevices(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices WHERE locked = 1`).Scan(&count)
	return count, err
}

// ==================== Draft Methods ====================

// GetDraft returns the saved in-progress answer set for a device
func (r *Repository) GetDraft(ctx context.Context, deviceID string) (models.AnswerSet, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT answers FROM drafts WHERE device_id = ?`, deviceID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var answers models.AnswerSet
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// SaveDraft overwrites the draft slot for a device
func (r *Repository) SaveDraft(ctx context.Context, deviceID string, answers models.AnswerSet) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drafts (device_id, answers, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			answers = excluded.answers,
			updated_at = excluded.updated_at
	`, deviceID, string(raw), time.Now())
	return err
}

// ClearDraft removes the draft slot for a device
func (r *Repository) ClearDraft(ctx context.Context, deviceID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE device_id = ?`, deviceID)
	return err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// DeleteSetting removes a setting
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
