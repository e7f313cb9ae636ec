package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail occurs when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotEmailConfirmed occurs when approving an account whose email is unconfirmed.
	ErrNotEmailConfirmed = errors.New("email not confirmed")
	// ErrInvalidToken occurs when a confirmation token is malformed or expired.
	ErrInvalidToken = errors.New("confirmation token invalid or expired")
	// ErrPastExpiry occurs when a temporary admin grant carries a non-future expiry.
	ErrPastExpiry = errors.New("expiry must be in the future")
	// ErrInvalidInterval occurs when an access window ends at or before it starts.
	ErrInvalidInterval = errors.New("window end must be after start")
	// ErrValidation indicates a request that fails input validation.
	ErrValidation = errors.New("validation failed")
)
