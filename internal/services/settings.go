package services

import (
	"context"

	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/models"
	"github.com/vladicamp/campvote/internal/repository"
	"github.com/vladicamp/campvote/pkg/supastore"
)

// Local settings keys
const (
	settingLogoURL  = "logo_url"
	settingStoreURL = "store_url"
	settingStoreKey = "store_key"
	settingBaseURL  = "base_url"
)

// SettingsService handles device-local settings: the cached logo URL,
// the stored remote-store override, and the share base URL
type SettingsService struct {
	log   logger.Logger
	repo  repository.SettingsRepository
	store supastore.Client
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository, store supastore.Client) *SettingsService {
	return &SettingsService{log: log, repo: repo, store: store}
}

// CachedLogoURL returns the locally cached logo URL
func (s *SettingsService) CachedLogoURL(ctx context.Context) (string, error) {
	return s.repo.GetSetting(ctx, settingLogoURL)
}

// SetCachedLogoURL stores the logo URL locally
func (s *SettingsService) SetCachedLogoURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, settingLogoURL, url)
}

// ClearCachedLogoURL removes the local logo cache
func (s *SettingsService) ClearCachedLogoURL(ctx context.Context) error {
	return s.repo.DeleteSetting(ctx, settingLogoURL)
}

// StoreOverride returns the stored remote-store override, if any.
// repository.ErrNotFound means no override is stored.
func (s *SettingsService) StoreOverride(ctx context.Context) (models.StoreConfig, error) {
	url, err := s.repo.GetSetting(ctx, settingStoreURL)
	if err != nil {
		return models.StoreConfig{}, err
	}
	key, err := s.repo.GetSetting(ctx, settingStoreKey)
	if err != nil {
		return models.StoreConfig{}, err
	}
	return models.StoreConfig{URL: url, Key: key}, nil
}

// SetStoreOverride persists the override and applies it to the live
// client. Surfaced to the admin on failure; the voter flow keeps running
// either way.
func (s *SettingsService) SetStoreOverride(ctx context.Context, cfg models.StoreConfig) error {
	if err := s.repo.SetSetting(ctx, settingStoreURL, cfg.URL); err != nil {
		return err
	}
	if err := s.repo.SetSetting(ctx, settingStoreKey, cfg.Key); err != nil {
		return err
	}
	s.store.SetConfig(cfg.URL, cfg.Key)
	s.log.Info("Remote store override applied")
	return nil
}

// StoreConfigured reports whether the live remote-store client has credentials
func (s *SettingsService) StoreConfigured() bool {
	return s.store.Configured()
}

// GetBaseURL returns the application base URL used for the share QR code
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, settingBaseURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, settingBaseURL, url)
}
