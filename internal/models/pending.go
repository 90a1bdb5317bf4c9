package models

import (
	"gorm.io/gorm"
)

// Registration kinds. Both kinds share one pending table so a phone
// number can hold at most one unverified registration at a time,
// whichever flow started it.
const (
	KindDriver = "driver"
	KindParent = "parent"
)

const DefaultMaxAttempts = 5

// PendingRegistration holds a not-yet-verified registration keyed by
// phone number. A new submission for the same phone deletes the old
// row first. The row is destroyed on successful verification, attempt
// exhaustion, or expiry.
type PendingRegistration struct {
	gorm.Model

	PhoneNumber string `json:"phone_number" gorm:"uniqueIndex;size:15;not null"`
	Kind        string `json:"kind" gorm:"size:10;index;not null"`

	FullName string `json:"full_name"`
	DOB      string `json:"dob"`
	Email    string `json:"email"`

	// Driver-only fields, empty for parents
	LicenceNo      string `json:"licence_no"`
	LicenceExpDate string `json:"licence_exp_date" gorm:"size:10"`
	VehicleTypeID  uint   `json:"vehicle_type_id"`
	VehicleNo      string `json:"vehicle_no"`
	CollegeName    string `json:"college_name"`
	StartShift     string `json:"start_shift" gorm:"size:5"`
	EndShift       string `json:"end_shift" gorm:"size:5"`

	IsDriver  bool `json:"is_driver" gorm:"default:false"`
	IsStudent bool `json:"is_student" gorm:"default:false"`

	OTPCredential
	MaxAttempts  int  `json:"max_attempts" gorm:"default:5"`
	AttemptCount int  `json:"attempt_count" gorm:"default:0"`
	IsActive     bool `json:"is_active" gorm:"default:true"`
}

// AttemptsLeft returns how many verification attempts remain.
func (p *PendingRegistration) AttemptsLeft() int {
	left := p.MaxAttempts - p.AttemptCount
	if left < 0 {
		return 0
	}
	return left
}

// DriverRegistration is the request body for driver registration step 1.
type DriverRegistration struct {
	FullName       string `json:"full_name" validate:"required"`
	DOB            string `json:"dob" validate:"required"`
	Email          string `json:"email" validate:"required"`
	PhoneNumber    string `json:"phone_number" validate:"required"`
	LicenceNo      string `json:"licence_no" validate:"required"`
	LicenceExpDate string `json:"licence_exp_date" validate:"required"`
	VehicleType    uint   `json:"vehicle_type" validate:"required"`
	VehicleNo      string `json:"vehicle_no" validate:"required"`
	IsDriver       bool   `json:"is_driver"`
	IsStudent      bool   `json:"is_student"`
	CollegeName    string `json:"college_name" validate:"required"`
	StartShift     string `json:"start_shift" validate:"required"`
	EndShift       string `json:"end_shift" validate:"required"`
}

// ParentRegistration is the request body for parent registration step 1.
type ParentRegistration struct {
	FullName    string `json:"full_name" validate:"required"`
	DOB         string `json:"dob" validate:"required"`
	Email       string `json:"email" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}
