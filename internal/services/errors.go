package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAuthRequired       = errors.New("authentication required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError reports caller input with a bad shape or range.
type ValidationError struct {
	Message string
	Errors  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

var (
	ErrInvalidRating    = newValidationError("Rating must be between 1 and 5")
	ErrEmptyComment     = newValidationError("Comment content is required")
	ErrEmptyQuery       = newValidationError("Search query is required")
	ErrInvalidDate      = newValidationError("Invalid date format. Use YYYY-MM-DD")
	ErrInvalidSearchKey = newValidationError("type must be one of all, stories, events")
	ErrMissingEra       = newValidationError("No era provided")
	ErrMissingEventType = newValidationError("Event type is required")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
