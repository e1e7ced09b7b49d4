package handlers

// AnswerRequest records one answer for the active session
type AnswerRequest struct {
	QuestionID int    `json:"question_id"`
	Value      string `json:"value"`
}

// LogoUpdateRequest sets the event logo URL
type LogoUpdateRequest struct {
	URL string `json:"url"`
}

// UnlockDeviceRequest clears the vote lock for a device. An empty
// device_id means the requester's own device.
type UnlockDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

// StoreConfigRequest sets the remote row-store override
type StoreConfigRequest struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// HTTPLoggingRequest toggles per-request HTTP logging
type HTTPLoggingRequest struct {
	Enabled bool `json:"enabled"`
}
