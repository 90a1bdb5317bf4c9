package models

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

var (
	alphanumericRe = regexp.MustCompile(`^[0-9a-zA-Z]*$`)
	tenDigitsRe    = regexp.MustCompile(`^[0-9]{10}$`)
)

// Child is a student record owned by a parent User. It references the
// college and timing directly, not through a driver.
type Child struct {
	gorm.Model

	ParentID uint `json:"parent_id" gorm:"index;not null"`
	Parent   User `json:"-" gorm:"foreignKey:ParentID"`

	CollegeID uint    `json:"college_id" gorm:"not null"`
	College   College `json:"-" gorm:"foreignKey:CollegeID"`

	TimingID uint          `json:"timing_id" gorm:"not null"`
	Timing   CollegeTiming `json:"-" gorm:"foreignKey:TimingID"`

	FullName      string    `json:"full_name"`
	DOB           time.Time `json:"dob" gorm:"type:date"`
	Age           int       `json:"age"`
	ChildrenClass string    `json:"children_class" gorm:"size:50"`

	ContactPersonName   string `json:"contact_person_name"`
	ContactPersonNumber string `json:"contact_person_number" gorm:"size:15"`
	AlternateNumber     string `json:"alternate_number" gorm:"size:15"`
}

// ChildRequest is the create/update body for a child record.
type ChildRequest struct {
	CollegeID           uint   `json:"college_id"`
	TimingID            uint   `json:"timing_id"`
	FullName            string `json:"full_name"`
	DOB                 string `json:"dob"`
	Age                 int    `json:"age"`
	ChildrenClass       string `json:"children_class"`
	ContactPersonName   string `json:"contact_person_name"`
	ContactPersonNumber string `json:"contact_person_number"`
	AlternateNumber     string `json:"alternate_number"`
}

// ChildUpdate is the partial-update body for a child record. Nil
// fields are left untouched.
type ChildUpdate struct {
	CollegeID           *uint   `json:"college_id"`
	TimingID            *uint   `json:"timing_id"`
	FullName            *string `json:"full_name"`
	DOB                 *string `json:"dob"`
	Age                 *int    `json:"age"`
	ChildrenClass       *string `json:"children_class"`
	ContactPersonName   *string `json:"contact_person_name"`
	ContactPersonNumber *string `json:"contact_person_number"`
	AlternateNumber     *string `json:"alternate_number"`
}

// ValidClassLabel reports whether a class label is alphanumeric only.
func ValidClassLabel(label string) bool {
	return alphanumericRe.MatchString(label)
}

// ValidContactNumber reports whether a contact number is exactly 10 digits.
func ValidContactNumber(number string) bool {
	return tenDigitsRe.MatchString(number)
}
