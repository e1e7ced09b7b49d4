package handlers

import "github.com/vladicamp/campvote/internal/models"

// LogoResponse carries the current event logo URL; empty means unset
type LogoResponse struct {
	URL string `json:"url"`
}

// StoreConfigResponse reports the remote store state. The key itself is
// never echoed back.
type StoreConfigResponse struct {
	URL        string `json:"url"`
	Configured bool   `json:"configured"`
}

// HTTPLoggingResponse reports the HTTP logging toggle state
type HTTPLoggingResponse struct {
	Enabled bool `json:"enabled"`
}

// SubmissionsResponse wraps the admin submissions listing
type SubmissionsResponse struct {
	Count       int                 `json:"count"`
	Submissions []models.Submission `json:"submissions"`
}
