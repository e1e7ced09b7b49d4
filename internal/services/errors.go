package services

// Service errors
var (
	ErrDeviceLocked     = &ServiceError{Message: "this device has already voted"}
	ErrNoSession        = &ServiceError{Message: "no active voting session"}
	ErrNotVoting        = &ServiceError{Message: "session is not in the voting state"}
	ErrSubmitInProgress = &ServiceError{Message: "a submission is already in progress"}
	ErrUnknownQuestion  = &ServiceError{Message: "unknown question id"}
	ErrBlankLogoURL     = &ServiceError{Message: "logo URL must not be blank"}
	ErrStoreNotReady    = &ServiceError{Message: "remote store is not configured"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
