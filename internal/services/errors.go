package services

import "errors"

var (
	// Sign-in errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoProfile          = errors.New("no user profile found")
	ErrNotAdmin           = errors.New("not authorized as admin")
	ErrSessionNotFound    = errors.New("session not found")

	// Credential update errors
	ErrRequiresRecentLogin     = errors.New("email change requires recent login")
	ErrWrongPassword           = errors.New("current password is incorrect")
	ErrCurrentPasswordRequired = errors.New("current password required")
	ErrPasswordTooShort        = errors.New("new password too short")
	ErrPasswordMismatch        = errors.New("new password and confirmation differ")
	ErrEmailTaken              = errors.New("email already in use")
)

// UploadError is a failure reported by the media host.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return e.Message }
