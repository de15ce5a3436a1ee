package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrSubmissionInFlight   = errors.New("a submission for this form is already in progress")
	ErrImageTooLarge        = errors.New("file size must be less than 5MB")
	ErrImageWrongType       = errors.New("file must be an image")
	ErrImageRequired        = errors.New("shop image is required")
	ErrUnsupportedProvider  = errors.New("unsupported identity provider")
	ErrDeletionNotConfirmed = errors.New("account deletion must be explicitly confirmed")
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch     = errors.New("passwords don't match")

	// Conflicts
	ErrUserEmailConflict       = errors.New("email address is already in use")
	ErrProfileUsernameConflict = errors.New("username is already in use")

	// Authentication and access
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailNotConfirmed  = errors.New("email not confirmed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific not-found
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrTournamentNotFound = errors.New("tournament not found")
)
