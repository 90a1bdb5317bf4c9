package models

import (
	"gorm.io/gorm"
)

// VehicleType is a reference table for the kinds of vehicles drivers
// can register with (e.g. "Van", "Mini Bus").
type VehicleType struct {
	gorm.Model
	VehicleName string `json:"vehicle_name" gorm:"size:20;not null"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
}

// College is resolved-or-created by (name, active) - no two active
// colleges share a name under that resolution rule. The composite
// unique index backs the rule against concurrent resolves.
type College struct {
	gorm.Model
	CollegeName string `json:"college_name" gorm:"size:100;not null;uniqueIndex:idx_college_identity"`
	IsActive    bool   `json:"is_active" gorm:"default:true;uniqueIndex:idx_college_identity"`
}

// CollegeTiming is a shift window, resolved-or-created by the
// (start, end) pair. Shifts are zero-padded "HH:MM" strings.
type CollegeTiming struct {
	gorm.Model
	StartShift string `json:"start_shift" gorm:"size:5;not null;uniqueIndex:idx_timing_identity"`
	EndShift   string `json:"end_shift" gorm:"size:5;not null;uniqueIndex:idx_timing_identity"`
}

// DriverCollegeMapping assigns a driver profile to one college and one
// shift timing. A driver has at most one mapping at a time -
// re-assignment replaces the row, it never duplicates it.
type DriverCollegeMapping struct {
	gorm.Model

	DriverID uint          `json:"driver_id" gorm:"uniqueIndex;not null"`
	Driver   DriverProfile `json:"-" gorm:"foreignKey:DriverID"`

	CollegeID uint    `json:"college_id" gorm:"index;not null"`
	College   College `json:"-" gorm:"foreignKey:CollegeID"`

	TimingID uint          `json:"timing_id" gorm:"index;not null"`
	Timing   CollegeTiming `json:"-" gorm:"foreignKey:TimingID"`
}

// MappingUpdate is the PATCH body for re-assigning a driver's mapping.
type MappingUpdate struct {
	CollegeName string `json:"college_name" validate:"required"`
	StartShift  string `json:"start_shift" validate:"required"`
	EndShift    string `json:"end_shift" validate:"required"`
}
