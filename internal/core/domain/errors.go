package domain

import "errors"

var (
	ErrAccountNotFound    = errors.New("user not found")
	ErrAccountExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("wrong password")
	ErrIncorrectPassword  = errors.New("old password is incorrect")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingSession     = errors.New("please login to access this resource")
	ErrInvalidSession     = errors.New("invalid or expired token")
	ErrAccountUnverified  = errors.New("account was not verified and has been removed, please sign up again")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrForbidden          = errors.New("access forbidden")

	// Upstream failures. Callers wrap the cause: fmt.Errorf("%w: %v", ErrOTPDelivery, err).
	ErrOTPDelivery  = errors.New("failed to send OTP email")
	ErrImageUpload  = errors.New("failed to upload profile image")
	ErrImageDestroy = errors.New("failed to remove profile image")
)

// ValidationError carries a client-facing message for malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a *ValidationError with msg.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
