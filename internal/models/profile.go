package models

import (
	"gorm.io/gorm"
)

// DriverProfile belongs to exactly one User and carries the driver's
// personal and vehicle details. LicenceNo is read-only after creation.
type DriverProfile struct {
	gorm.Model

	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`
	User   User `json:"-" gorm:"foreignKey:UserID"`

	FullName       string `json:"full_name"`
	DOB            string `json:"dob"`
	Email          string `json:"email"`
	LicenceNo      string `json:"licence_no"`
	LicenceExpDate string `json:"licence_exp_date" gorm:"size:10"`
	VehicleTypeID  uint   `json:"vehicle_type_id"`
	VehicleNo      string `json:"vehicle_no"`
	ProfilePic     string `json:"profile_pic"`
}

// ParentProfile belongs to exactly one User. No driver fields.
type ParentProfile struct {
	gorm.Model

	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`
	User   User `json:"-" gorm:"foreignKey:UserID"`

	FullName   string `json:"full_name"`
	DOB        string `json:"dob"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
}

// DriverProfileUpdate is the PATCH body for a driver profile. Licence
// number is intentionally absent - it cannot be changed once set.
type DriverProfileUpdate struct {
	FullName       *string `json:"full_name"`
	DOB            *string `json:"dob"`
	Email          *string `json:"email"`
	LicenceExpDate *string `json:"licence_exp_date"`
	VehicleType    *uint   `json:"vehicle_type"`
	VehicleNo      *string `json:"vehicle_no"`
}
