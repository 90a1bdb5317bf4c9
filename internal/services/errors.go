package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExists     = errors.New("a user with this phone number already exists")
	ErrNoPendingRegistration = errors.New("no pending registration found for this phone number")
	ErrMaxAttemptsExceeded   = errors.New("maximum OTP attempts exceeded, please register again")
	ErrOTPExpired            = errors.New("OTP expired")
	ErrInvalidOTP            = errors.New("invalid OTP")
	ErrUserNotFound          = errors.New("user not found with this phone number")
	ErrUserInactive          = errors.New("user is not active")
	ErrInvalidUserType       = errors.New("invalid user type")
)

// InvalidOTPError reports a failed registration verification attempt
// along with how many attempts remain. errors.Is(err, ErrInvalidOTP)
// matches it.
type InvalidOTPError struct {
	AttemptsLeft int
}

func (e *InvalidOTPError) Error() string {
	return fmt.Sprintf("Invalid OTP. Attempts left: %d", e.AttemptsLeft)
}

func (e *InvalidOTPError) Unwrap() error {
	return ErrInvalidOTP
}

// MappingError wraps a failure inside the college/timing/mapping
// transaction. Handlers surface it as a server error.
type MappingError struct {
	Err error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("an error occurred while saving the driver profile mapping: %v", e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}
