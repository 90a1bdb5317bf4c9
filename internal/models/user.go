package models

import (
	"gorm.io/gorm"
)

// User is a permanent account identified by phone number. There is no
// password - the sole credential is a phone + OTP pair. The embedded
// OTPCredential is reused for login codes after registration.
type User struct {
	gorm.Model

	PhoneNumber string `json:"phone_number" gorm:"uniqueIndex;size:15;not null"`
	IsDriver    bool   `json:"is_driver" gorm:"default:false"`
	IsStudent   bool   `json:"is_student" gorm:"default:false"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`

	OTPCredential
}

// VerifyOTPRequest is the body for both registration verification and
// OTP login.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	OTPCode     string `json:"otp_code" validate:"required"`
}

// SendOTPRequest is the body for requesting a login OTP.
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}
