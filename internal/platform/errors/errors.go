package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrPermissionDenied    = errors.New("motion permission denied")
	ErrSensorUnavailable   = errors.New("motion sensor unavailable")
	ErrInvalidIndex        = errors.New("walk index out of range")
	ErrStorage             = errors.New("storage failure")
	ErrEngineStopped       = errors.New("session engine stopped")
)
