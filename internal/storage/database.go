package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/collegecab/collegecab-backend/internal/models"
)

// DatabaseStore is the PostgreSQL-backed store
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// User operations

func (d *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := d.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (d *DatabaseStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (d *DatabaseStore) UpdateUser(user *models.User) error {
	return d.db.Save(user).Error
}

// Pending registration operations

func (d *DatabaseStore) CreatePendingRegistration(pending *models.PendingRegistration) (*models.PendingRegistration, error) {
	if err := d.db.Create(pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

func (d *DatabaseStore) GetPendingRegistrationByPhone(phone string) (*models.PendingRegistration, error) {
	var pending models.PendingRegistration
	if err := d.db.Where("phone_number = ?", phone).First(&pending).Error; err != nil {
		return nil, translateErr(err)
	}
	return &pending, nil
}

func (d *DatabaseStore) UpdatePendingRegistration(pending *models.PendingRegistration) error {
	return d.db.Save(pending).Error
}

func (d *DatabaseStore) DeletePendingRegistration(id uint) error {
	return d.db.Unscoped().Delete(&models.PendingRegistration{}, id).Error
}

func (d *DatabaseStore) DeletePendingRegistrationsByPhone(phone string) error {
	return d.db.Unscoped().Where("phone_number = ?", phone).Delete(&models.PendingRegistration{}).Error
}

// Profile operations

func (d *DatabaseStore) CreateDriverProfile(profile *models.DriverProfile) (*models.DriverProfile, error) {
	if err := d.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (d *DatabaseStore) GetDriverProfile(id uint) (*models.DriverProfile, error) {
	var profile models.DriverProfile
	if err := d.db.First(&profile, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &profile, nil
}

func (d *DatabaseStore) GetDriverProfileByUser(userID uint) (*models.DriverProfile, error) {
	var profile models.DriverProfile
	if err := d.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translateErr(err)
	}
	return &profile, nil
}

func (d *DatabaseStore) UpdateDriverProfile(profile *models.DriverProfile) error {
	return d.db.Save(profile).Error
}

func (d *DatabaseStore) CreateParentProfile(profile *models.ParentProfile) (*models.ParentProfile, error) {
	if err := d.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (d *DatabaseStore) GetParentProfileByUser(userID uint) (*models.ParentProfile, error) {
	var profile models.ParentProfile
	if err := d.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translateErr(err)
	}
	return &profile, nil
}

// Vehicle type operations

func (d *DatabaseStore) GetVehicleType(id uint) (*models.VehicleType, error) {
	var vt models.VehicleType
	if err := d.db.First(&vt, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &vt, nil
}

func (d *DatabaseStore) GetActiveVehicleTypes() ([]*models.VehicleType, error) {
	var types []*models.VehicleType
	if err := d.db.Where("is_active = ?", true).Order("vehicle_name").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (d *DatabaseStore) EnsureVehicleType(name string) (*models.VehicleType, error) {
	var vt models.VehicleType
	err := d.db.Where(models.VehicleType{VehicleName: name, IsActive: true}).
		FirstOrCreate(&vt).Error
	if err != nil {
		return nil, err
	}
	return &vt, nil
}

// College / timing / mapping operations

// getOrCreate runs lookup-then-create under a savepoint. Two concurrent
// resolves can both miss the lookup; the identity-key unique index then
// rejects the second insert, the savepoint rolls back only that insert,
// and the loser re-reads the winner's row.
func getOrCreate(tx *gorm.DB, cond interface{}, dest interface{}) (bool, error) {
	var rows int64
	err := tx.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(cond).FirstOrCreate(dest)
		rows = res.RowsAffected
		return res.Error
	})
	if err == nil {
		return rows > 0, nil
	}
	if rerr := tx.Where(cond).First(dest).Error; rerr != nil {
		return false, err
	}
	return false, nil
}

// ResolveDriverMapping runs the three-step get-or-create inside a
// single transaction: college by (name, active), timing by
// (start, end), then the mapping triple. Any step failing rolls the
// whole thing back so no orphan college or timing rows are left behind.
func (d *DatabaseStore) ResolveDriverMapping(driverID uint, collegeName, startShift, endShift string) (*models.DriverCollegeMapping, bool, error) {
	var mapping models.DriverCollegeMapping
	created := false

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var college models.College
		if _, err := getOrCreate(tx, models.College{CollegeName: collegeName, IsActive: true}, &college); err != nil {
			return err
		}

		var timing models.CollegeTiming
		if _, err := getOrCreate(tx, models.CollegeTiming{StartShift: startShift, EndShift: endShift}, &timing); err != nil {
			return err
		}

		var err error
		created, err = getOrCreate(tx, models.DriverCollegeMapping{
			DriverID:  driverID,
			CollegeID: college.ID,
			TimingID:  timing.ID,
		}, &mapping)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return &mapping, created, nil
}

func (d *DatabaseStore) GetDriverMapping(id uint) (*models.DriverCollegeMapping, error) {
	var mapping models.DriverCollegeMapping
	if err := d.db.First(&mapping, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &mapping, nil
}

func (d *DatabaseStore) GetMappingByDriver(driverID uint) (*models.DriverCollegeMapping, error) {
	var mapping models.DriverCollegeMapping
	if err := d.db.Where("driver_id = ?", driverID).First(&mapping).Error; err != nil {
		return nil, translateErr(err)
	}
	return &mapping, nil
}

func (d *DatabaseStore) DeleteDriverMapping(id uint) error {
	return d.db.Unscoped().Delete(&models.DriverCollegeMapping{}, id).Error
}

func (d *DatabaseStore) GetCollege(id uint) (*models.College, error) {
	var college models.College
	if err := d.db.First(&college, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &college, nil
}

func (d *DatabaseStore) GetTiming(id uint) (*models.CollegeTiming, error) {
	var timing models.CollegeTiming
	if err := d.db.First(&timing, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &timing, nil
}

// Children operations

func (d *DatabaseStore) CreateChild(child *models.Child) (*models.Child, error) {
	if err := d.db.Create(child).Error; err != nil {
		return nil, err
	}
	return child, nil
}

func (d *DatabaseStore) GetChild(id uint) (*models.Child, error) {
	var child models.Child
	if err := d.db.First(&child, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &child, nil
}

func (d *DatabaseStore) UpdateChild(child *models.Child) error {
	return d.db.Save(child).Error
}

func (d *DatabaseStore) DeleteChild(id uint) error {
	return d.db.Unscoped().Delete(&models.Child{}, id).Error
}

func (d *DatabaseStore) GetChildrenByParent(parentID uint) ([]*models.Child, error) {
	var children []*models.Child
	if err := d.db.Where("parent_id = ?", parentID).Find(&children).Error; err != nil {
		return nil, err
	}
	return children, nil
}
