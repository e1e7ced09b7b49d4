package repository

import (
	"context"

	"github.com/vladicamp/campvote/internal/models"
)

// DeviceRepository defines device-lock operations.
// The lock is the only cross-session-visible flag: once set, the device
// may not submit again until explicitly cleared. Writes carry no
// transactional guarantee against concurrent tabs (last write wins).
type DeviceRepository interface {
	IsLocked(ctx context.Context, deviceID string) (bool, error)
	SetLocked(ctx context.Context, deviceID string) error
	ClearLock(ctx context.Context, deviceID string) error
	CountLockedDevices(ctx context.Context) (int, error)
}

// DraftRepository defines draft answer-set persistence.
// One slot per device, overwritten on every answer edit.
type DraftRepository interface {
	GetDraft(ctx context.Context, deviceID string) (models.AnswerSet, error)
	SaveDraft(ctx context.Context, deviceID string, answers models.AnswerSet) error
	ClearDraft(ctx context.Context, deviceID string) error
}

// SettingsRepository defines local settings operations (cached logo URL,
// stored remote-store override)
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// FullRepository combines all repository interfaces.
// Use this when a service needs access to multiple domains.
type FullRepository interface {
	DeviceRepository
	DraftRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
