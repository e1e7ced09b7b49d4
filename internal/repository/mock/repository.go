package mock

import (
	"context"

	"github.com/vladicamp/campvote/internal/models"
	"github.com/vladicamp/campvote/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database
// manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SaveDraftError = errors.New("disk full")
//	svc := services.NewSessionService(log, mockRepo, cat, store, narrative)
type Repository struct {
	repository.FullRepository

	// ===== Device Errors =====
	IsLockedError           error
	SetLockedError          error
	ClearLockError          error
	CountLockedDevicesError error

	// ===== Draft Errors =====
	GetDraftError   error
	SaveDraftError  error
	ClearDraftError error

	// ===== Settings Errors =====
	GetSettingError    error
	SetSettingError    error
	DeleteSettingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Device Methods =====

func (m *Repository) IsLocked(ctx context.Context, deviceID string) (bool, error) {
	if m.IsLockedError != nil {
		return false, m.IsLockedError
	}
	return m.FullRepository.IsLocked(ctx, deviceID)
}

func (m *Repository) SetLocked(ctx context.Context, deviceID string) error {
	if m.SetLockedError != nil {
		return m.SetLockedError
	}
	return m.FullRepository.SetLocked(ctx, deviceID)
}

func (m *Repository) ClearLock(ctx context.Context, deviceID string) error {
	if m.ClearLockError != nil {
		return m.ClearLockError
	}
	return m.FullRepository.ClearLock(ctx, deviceID)
}

func (m *Repository) CountLockedDevices(ctx context.Context) (int, error) {
	if m.CountLockedDevicesError != nil {
		return 0, m.CountLockedDevicesError
	}
	return m.FullRepository.CountLockedDevices(ctx)
}

// ===== Draft Methods =====

func (m *Repository) GetDraft(ctx context.Context, deviceID string) (models.AnswerSet, error) {
	if m.GetDraftError != nil {
		return nil, m.GetDraftError
	}
	return m.FullRepository.GetDraft(ctx, deviceID)
}

func (m *Repository) SaveDraft(ctx context.Context, deviceID string, answers models.AnswerSet) error {
	if m.SaveDraftError != nil {
		return m.SaveDraftError
	}
	return m.FullRepository.SaveDraft(ctx, deviceID, answers)
}

func (m *Repository) ClearDraft(ctx context.Context, deviceID string) error {
	if m.ClearDraftError != nil {
		return m.ClearDraftError
	}
	return m.FullRepository.ClearDraft(ctx, deviceID)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) DeleteSetting(ctx context.Context, key string) error {
	if m.DeleteSettingError != nil {
		return m.DeleteSettingError
	}
	return m.FullRepository.DeleteSetting(ctx, key)
}
