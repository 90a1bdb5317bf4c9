package storage

import (
	"sync"
	"time"

	"github.com/collegecab/collegecab-backend/internal/models"
)

// MemoryStore holds all data in memory for tests and local development
type MemoryStore struct {
	users    map[uint]*models.User
	pendings map[uint]*models.PendingRegistration
	drivers  map[uint]*models.DriverProfile
	parents  map[uint]*models.ParentProfile
	vehicles map[uint]*models.VehicleType
	colleges map[uint]*models.College
	timings  map[uint]*models.CollegeTiming
	mappings map[uint]*models.DriverCollegeMapping
	children map[uint]*models.Child

	// One mutex per entity family, following write paths
	userMu    sync.RWMutex
	pendingMu sync.RWMutex
	profileMu sync.RWMutex
	collegeMu sync.RWMutex
	childMu   sync.RWMutex

	idMu    sync.Mutex
	counter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*models.User),
		pendings: make(map[uint]*models.PendingRegistration),
		drivers:  make(map[uint]*models.DriverProfile),
		parents:  make(map[uint]*models.ParentProfile),
		vehicles: make(map[uint]*models.VehicleType),
		colleges: make(map[uint]*models.College),
		timings:  make(map[uint]*models.CollegeTiming),
		mappings: make(map[uint]*models.DriverCollegeMapping),
		children: make(map[uint]*models.Child),
	}
}

// IDs are shared across entities so a driver profile id never collides
// with a mapping id in tests.
func (m *MemoryStore) nextID() uint {
	m.idMu.Lock()
	defer m.idMu.Unlock()
	m.counter++
	return m.counter
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	user.ID = m.nextID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(id uint) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.PhoneNumber == phone {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

// Pending registration operations

func (m *MemoryStore) CreatePendingRegistration(pending *models.PendingRegistration) (*models.PendingRegistration, error) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	pending.ID = m.nextID()
	pending.CreatedAt = time.Now()
	pending.UpdatedAt = time.Now()
	m.pendings[pending.ID] = pending
	return pending, nil
}

func (m *MemoryStore) GetPendingRegistrationByPhone(phone string) (*models.PendingRegistration, error) {
	m.pendingMu.RLock()
	defer m.pendingMu.RUnlock()

	for _, pending := range m.pendings {
		if pending.PhoneNumber == phone {
			return pending, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdatePendingRegistration(pending *models.PendingRegistration) error {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	if _, exists := m.pendings[pending.ID]; !exists {
		return ErrNotFound
	}
	pending.UpdatedAt = time.Now()
	m.pendings[pending.ID] = pending
	return nil
}

func (m *MemoryStore) DeletePendingRegistration(id uint) error {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	delete(m.pendings, id)
	return nil
}

func (m *MemoryStore) DeletePendingRegistrationsByPhone(phone string) error {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	for id, pending := range m.pendings {
		if pending.PhoneNumber == phone {
			delete(m.pendings, id)
		}
	}
	return nil
}

// Profile operations

func (m *MemoryStore) CreateDriverProfile(profile *models.DriverProfile) (*models.DriverProfile, error) {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	profile.ID = m.nextID()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	m.drivers[profile.ID] = profile
	return profile, nil
}

func (m *MemoryStore) GetDriverProfile(id uint) (*models.DriverProfile, error) {
	m.profileMu.RLock()
	defer m.profileMu.RUnlock()

	profile, exists := m.drivers[id]
	if !exists {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (m *MemoryStore) GetDriverProfileByUser(userID uint) (*models.DriverProfile, error) {
	m.profileMu.RLock()
	defer m.profileMu.RUnlock()

	for _, profile := range m.drivers {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateDriverProfile(profile *models.DriverProfile) error {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	if _, exists := m.drivers[profile.ID]; !exists {
		return ErrNotFound
	}
	profile.UpdatedAt = time.Now()
	m.drivers[profile.ID] = profile
	return nil
}

func (m *MemoryStore) CreateParentProfile(profile *models.ParentProfile) (*models.ParentProfile, error) {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	profile.ID = m.nextID()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	m.parents[profile.ID] = profile
	return profile, nil
}

func (m *MemoryStore) GetParentProfileByUser(userID uint) (*models.ParentProfile, error) {
	m.profileMu.RLock()
	defer m.profileMu.RUnlock()

	for _, profile := range m.parents {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, ErrNotFound
}

// Vehicle type operations

func (m *MemoryStore) GetVehicleType(id uint) (*models.VehicleType, error) {
	m.collegeMu.RLock()
	defer m.collegeMu.RUnlock()

	vt, exists := m.vehicles[id]
	if !exists {
		return nil, ErrNotFound
	}
	return vt, nil
}

func (m *MemoryStore) GetActiveVehicleTypes() ([]*models.VehicleType, error) {
	m.collegeMu.RLock()
	defer m.collegeMu.RUnlock()

	var types []*models.VehicleType
	for _, vt := range m.vehicles {
		if vt.IsActive {
			types = append(types, vt)
		}
	}
	return types, nil
}

func (m *MemoryStore) EnsureVehicleType(name string) (*models.VehicleType, error) {
	m.collegeMu.Lock()
	defer m.collegeMu.Unlock()

	for _, vt := range m.vehicles {
		if vt.VehicleName == name && vt.IsActive {
			return vt, nil
		}
	}
	vt := &models.VehicleType{VehicleName: name, IsActive: true}
	vt.ID = m.nextID()
	vt.CreatedAt = time.Now()
	m.vehicles[vt.ID] = vt
	return vt, nil
}

// College / timing / mapping operations

// ResolveDriverMapping mirrors the transactional get-or-create of the
// database store. The single mutex makes the three steps atomic here.
func (m *MemoryStore) ResolveDriverMapping(driverID uint, collegeName, startShift, endShift string) (*models.DriverCollegeMapping, bool, error) {
	m.collegeMu.Lock()
	defer m.collegeMu.Unlock()

	var college *models.College
	for _, c := range m.colleges {
		if c.CollegeName == collegeName && c.IsActive {
			college = c
			break
		}
	}
	if college == nil {
		college = &models.College{CollegeName: collegeName, IsActive: true}
		college.ID = m.nextID()
		college.CreatedAt = time.Now()
		m.colleges[college.ID] = college
	}

	var timing *models.CollegeTiming
	for _, t := range m.timings {
		if t.StartShift == startShift && t.EndShift == endShift {
			timing = t
			break
		}
	}
	if timing == nil {
		timing = &models.CollegeTiming{StartShift: startShift, EndShift: endShift}
		timing.ID = m.nextID()
		timing.CreatedAt = time.Now()
		m.timings[timing.ID] = timing
	}

	for _, mp := range m.mappings {
		if mp.DriverID == driverID && mp.CollegeID == college.ID && mp.TimingID == timing.ID {
			return mp, false, nil
		}
	}
	mapping := &models.DriverCollegeMapping{
		DriverID:  driverID,
		CollegeID: college.ID,
		TimingID:  timing.ID,
	}
	mapping.ID = m.nextID()
	mapping.CreatedAt = time.Now()
	m.mappings[mapping.ID] = mapping
	return mapping, true, nil
}

func (m *MemoryStore) GetDriverMapping(id uint) (*models.DriverCollegeMapping, error) {
	m.collegeMu.RLock()
	defer m.collegeMu.RUnlock()

	mapping, exists := m.mappings[id]
	if !exists {
		return nil, ErrNotFound
	}
	return mapping, nil
}

func (m *MemoryStore) GetMappingByDriver(driverID uint) (*models.DriverCollegeMapping, error) {
	m.collegeMu.RLock()
	defer m.collegeMu.RUnlock()

	for _, mapping := range m.mappings {
		if mapping.DriverID == driverID {
			return mapping, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) DeleteDriverMapping(id uint) error {
	m.collegeMu.Lock()
	defer m.collegeMu.Unlock()

	delete(m.mappings, id)
	return nil
}

func (m *MemoryStore) GetCollege(id uint) (*models.College, error) {
	m.collegeMu.RLock()
	defer m.collegeMu.RUnlock()

	college, exists := m.colleges[id]
	if !exists {
		return nil, ErrNotFound
	}
	return college, nil
}

func (m *MemoryStore) GetTiming(id uint) (*models.CollegeTiming, error) {
	m.collegeMu.RLock()
	defer m.collegeMu.RUnlock()

	timing, exists := m.timings[id]
	if !exists {
		return nil, ErrNotFound
	}
	return timing, nil
}

// Children operations

func (m *MemoryStore) CreateChild(child *models.Child) (*models.Child, error) {
	m.childMu.Lock()
	defer m.childMu.Unlock()

	child.ID = m.nextID()
	child.CreatedAt = time.Now()
	child.UpdatedAt = time.Now()
	m.children[child.ID] = child
	return child, nil
}

func (m *MemoryStore) GetChild(id uint) (*models.Child, error) {
	m.childMu.RLock()
	defer m.childMu.RUnlock()

	child, exists := m.children[id]
	if !exists {
		return nil, ErrNotFound
	}
	return child, nil
}

func (m *MemoryStore) UpdateChild(child *models.Child) error {
	m.childMu.Lock()
	defer m.childMu.Unlock()

	if _, exists := m.children[child.ID]; !exists {
		return ErrNotFound
	}
	child.UpdatedAt = time.Now()
	m.children[child.ID] = child
	return nil
}

func (m *MemoryStore) DeleteChild(id uint) error {
	m.childMu.Lock()
	defer m.childMu.Unlock()

	delete(m.children, id)
	return nil
}

func (m *MemoryStore) GetChildrenByParent(parentID uint) ([]*models.Child, error) {
	m.childMu.RLock()
	defer m.childMu.RUnlock()

	var children []*models.Child
	for _, child := range m.children {
		if child.ParentID == parentID {
			children = append(children, child)
		}
	}
	return children, nil
}
