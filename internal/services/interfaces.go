package services

import (
	"context"

	"github.com/vladicamp/campvote/internal/models"
)

// SessionServicer defines the interface for the voting workflow
type SessionServicer interface {
	View(ctx context.Context, deviceID string) (*SessionView, error)
	Start(ctx context.Context, deviceID string) (*SessionView, error)
	Answer(ctx context.Context, deviceID string, questionID int, value string) (*SessionView, error)
	Submit(ctx context.Context, deviceID string) (*SessionView, error)
	Reset(ctx context.Context, deviceID string) (*SessionView, error)
	ResetDevice(ctx context.Context, deviceID string) error
	SetBroadcaster(b Broadcaster)
}

// NarrativeServicer defines the interface for results narration
type NarrativeServicer interface {
	BuildPrompt(answers models.AnswerSet) string
	Describe(ctx context.Context, answers models.AnswerSet) string
}

// BallotServicer defines the interface for admin ballot operations
type BallotServicer interface {
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	CountSubmissions(ctx context.Context) (int, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	ClearSubmissions(ctx context.Context) error
	GetLogoURL(ctx context.Context) (string, error)
	SetLogoURL(ctx context.Context, url string) error
	ClearLogoURL(ctx context.Context) error
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	CachedLogoURL(ctx context.Context) (string, error)
	SetCachedLogoURL(ctx context.Context, url string) error
	ClearCachedLogoURL(ctx context.Context) error
	StoreOverride(ctx context.Context) (models.StoreConfig, error)
	SetStoreOverride(ctx context.Context, cfg models.StoreConfig) error
	StoreConfigured() bool
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
}

// Ensure concrete types implement interfaces
var (
	_ SessionServicer   = (*SessionService)(nil)
	_ NarrativeServicer = (*NarrativeService)(nil)
	_ BallotServicer    = (*BallotService)(nil)
	_ SettingsServicer  = (*SettingsService)(nil)
)
