package storage

import (
	"errors"

	"github.com/collegecab/collegecab-backend/internal/models"
)

// ErrNotFound is returned by all stores when no record matches.
var ErrNotFound = errors.New("record not found")

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUser(id uint) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	UpdateUser(user *models.User) error

	// Pending registration operations
	CreatePendingRegistration(pending *models.PendingRegistration) (*models.PendingRegistration, error)
	GetPendingRegistrationByPhone(phone string) (*models.PendingRegistration, error)
	UpdatePendingRegistration(pending *models.PendingRegistration) error
	DeletePendingRegistration(id uint) error
	DeletePendingRegistrationsByPhone(phone string) error

	// Profile operations
	CreateDriverProfile(profile *models.DriverProfile) (*models.DriverProfile, error)
	GetDriverProfile(id uint) (*models.DriverProfile, error)
	GetDriverProfileByUser(userID uint) (*models.DriverProfile, error)
	UpdateDriverProfile(profile *models.DriverProfile) error
	CreateParentProfile(profile *models.ParentProfile) (*models.ParentProfile, error)
	GetParentProfileByUser(userID uint) (*models.ParentProfile, error)

	// Vehicle type operations
	GetVehicleType(id uint) (*models.VehicleType, error)
	GetActiveVehicleTypes() ([]*models.VehicleType, error)
	EnsureVehicleType(name string) (*models.VehicleType, error)

	// College / timing / mapping operations. ResolveDriverMapping runs
	// the three get-or-create steps in one transaction and reports
	// whether the mapping row was created or already existed.
	ResolveDriverMapping(driverID uint, collegeName, startShift, endShift string) (*models.DriverCollegeMapping, bool, error)
	GetDriverMapping(id uint) (*models.DriverCollegeMapping, error)
	GetMappingByDriver(driverID uint) (*models.DriverCollegeMapping, error)
	DeleteDriverMapping(id uint) error
	GetCollege(id uint) (*models.College, error)
	GetTiming(id uint) (*models.CollegeTiming, error)

	// Children operations
	CreateChild(child *models.Child) (*models.Child, error)
	GetChild(id uint) (*models.Child, error)
	UpdateChild(child *models.Child) error
	DeleteChild(id uint) error
	GetChildrenByParent(parentID uint) ([]*models.Child, error)
}
