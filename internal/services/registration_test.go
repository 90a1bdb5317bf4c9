package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

func newTestRegistration(t *testing.T) (*storage.MemoryStore, *RegistrationService) {
	t.Helper()
	store := storage.NewMemoryStore()
	tokens := NewTokenService()
	mappings := NewMappingService(store)
	return store, NewRegistrationService(store, tokens, mappings, nil)
}

func driverPending(phone string) *models.PendingRegistration {
	return &models.PendingRegistration{
		PhoneNumber:    phone,
		Kind:           models.KindDriver,
		FullName:       "Alice Driver",
		DOB:            "1990-04-12",
		Email:          "alice@example.com",
		LicenceNo:      "DL123456",
		LicenceExpDate: "2030-01-01",
		VehicleTypeID:  1,
		VehicleNo:      "KA01AB1234",
		CollegeName:    "Tech U",
		StartShift:     "09:00",
		EndShift:       "17:00",
		IsDriver:       true,
	}
}

func parentPending(phone string) *models.PendingRegistration {
	return &models.PendingRegistration{
		PhoneNumber: phone,
		Kind:        models.KindParent,
		FullName:    "Priya Parent",
		DOB:         "1985-09-30",
		Email:       "priya@example.com",
		IsStudent:   true,
	}
}

// wrongCode returns a 4-digit code guaranteed to differ from the real
// one. Generated codes never start with 0.
const wrongCode = "0000"

func TestBeginSupersedesEarlierPending(t *testing.T) {
	store, svc := newTestRegistration(t)

	_, err := svc.Begin(driverPending("9000000001"))
	require.NoError(t, err)
	first, err := store.GetPendingRegistrationByPhone("9000000001")
	require.NoError(t, err)

	code, err := svc.Begin(driverPending("9000000001"))
	require.NoError(t, err)
	second, err := store.GetPendingRegistrationByPhone("9000000001")
	require.NoError(t, err)

	// The earlier record is gone, not shadowed
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, second.AttemptCount)

	// Only the fresh code verifies
	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000001", code)
	require.NoError(t, err)
}

func TestBeginRejectsClaimedPhone(t *testing.T) {
	store, svc := newTestRegistration(t)

	_, err := store.CreateUser(&models.User{PhoneNumber: "9000000002", IsDriver: true, IsActive: true})
	require.NoError(t, err)

	_, err = svc.Begin(driverPending("9000000002"))
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestVerifyMaterializesDriver(t *testing.T) {
	store, svc := newTestRegistration(t)

	code, err := svc.Begin(driverPending("9000000003"))
	require.NoError(t, err)

	user, tokens, err := svc.VerifyAndMaterialize(models.KindDriver, "9000000003", code)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsDriver)
	assert.False(t, user.IsStudent)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, tokens.Access)
	assert.NotEmpty(t, tokens.Refresh)

	profile, err := store.GetDriverProfileByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "DL123456", profile.LicenceNo)

	// College mapping was resolved during materialization
	mapping, err := store.GetMappingByDriver(profile.ID)
	require.NoError(t, err)
	college, err := store.GetCollege(mapping.CollegeID)
	require.NoError(t, err)
	assert.Equal(t, "Tech U", college.CollegeName)
	timing, err := store.GetTiming(mapping.TimingID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", timing.StartShift)
	assert.Equal(t, "17:00", timing.EndShift)

	// Pending record destroyed: retrying the same verification is a 404
	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000003", code)
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestVerifyWrongKindIsNotFound(t *testing.T) {
	_, svc := newTestRegistration(t)

	code, err := svc.Begin(driverPending("9000000004"))
	require.NoError(t, err)

	_, _, err = svc.VerifyAndMaterialize(models.KindParent, "9000000004", code)
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestVerifyAttemptCountdownAndExhaustion(t *testing.T) {
	_, svc := newTestRegistration(t)

	_, err := svc.Begin(driverPending("9000000005"))
	require.NoError(t, err)

	// Five invalid attempts count down 4, 3, 2, 1, 0
	for want := 4; want >= 0; want-- {
		_, _, err := svc.VerifyAndMaterialize(models.KindDriver, "9000000005", wrongCode)
		require.ErrorIs(t, err, ErrInvalidOTP)

		var invalid *InvalidOTPError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, want, invalid.AttemptsLeft)
		assert.Equal(t, fmt.Sprintf("Invalid OTP. Attempts left: %d", want), err.Error())
	}

	// The next attempt is terminal and destroys the record
	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000005", wrongCode)
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)

	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000005", wrongCode)
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	store, svc := newTestRegistration(t)

	// 299 seconds old: still valid
	code, err := svc.Begin(driverPending("9000000006"))
	require.NoError(t, err)
	pending, err := store.GetPendingRegistrationByPhone("9000000006")
	require.NoError(t, err)
	issued := time.Now().Add(-299 * time.Second)
	pending.OTPCreatedAt = &issued
	require.NoError(t, store.UpdatePendingRegistration(pending))

	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000006", code)
	assert.NoError(t, err)

	// 301 seconds old: expired, terminal
	code, err = svc.Begin(driverPending("9000000007"))
	require.NoError(t, err)
	pending, err = store.GetPendingRegistrationByPhone("9000000007")
	require.NoError(t, err)
	issued = time.Now().Add(-301 * time.Second)
	pending.OTPCreatedAt = &issued
	require.NoError(t, store.UpdatePendingRegistration(pending))

	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000007", code)
	assert.ErrorIs(t, err, ErrOTPExpired)

	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000007", code)
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestVerifyMaterializesParent(t *testing.T) {
	store, svc := newTestRegistration(t)

	code, err := svc.Begin(parentPending("9000000008"))
	require.NoError(t, err)

	user, _, err := svc.VerifyAndMaterialize(models.KindParent, "9000000008", code)
	require.NoError(t, err)
	assert.True(t, user.IsStudent)
	assert.False(t, user.IsDriver)

	_, err = store.GetParentProfileByUser(user.ID)
	assert.NoError(t, err)
	_, err = store.GetDriverProfileByUser(user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func registerVerifiedDriver(t *testing.T, svc *RegistrationService, phone string) *models.User {
	t.Helper()
	code, err := svc.Begin(driverPending(phone))
	require.NoError(t, err)
	user, _, err := svc.VerifyAndMaterialize(models.KindDriver, phone, code)
	require.NoError(t, err)
	return user
}

func TestLoginOTPIsSingleUse(t *testing.T) {
	store, svc := newTestRegistration(t)
	user := registerVerifiedDriver(t, svc, "9000000009")

	code, err := svc.SendLoginOTP(user.PhoneNumber, models.KindDriver)
	require.NoError(t, err)

	loggedIn, tokens, info, err := svc.Login(user.PhoneNumber, code)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Access)
	require.NotNil(t, info)
	assert.Equal(t, "Tech U", info.CollegeName)
	assert.Equal(t, "09:00", info.StartShift)
	assert.Equal(t, "17:00", info.EndShift)

	// Credential cleared after use
	stored, err := store.GetUser(loggedIn.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OTPHash)

	// Replaying the same code fails against the cleared hash
	_, _, _, err = svc.Login(user.PhoneNumber, code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestLoginHasNoAttemptLimit(t *testing.T) {
	// Registration counts attempts; login intentionally does not.
	_, svc := newTestRegistration(t)
	user := registerVerifiedDriver(t, svc, "9000000010")

	code, err := svc.SendLoginOTP(user.PhoneNumber, models.KindDriver)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, _, _, err := svc.Login(user.PhoneNumber, wrongCode)
		require.ErrorIs(t, err, ErrInvalidOTP)
	}

	_, _, _, err = svc.Login(user.PhoneNumber, code)
	assert.NoError(t, err)
}

func TestLoginExpiredOTP(t *testing.T) {
	store, svc := newTestRegistration(t)
	user := registerVerifiedDriver(t, svc, "9000000011")

	code, err := svc.SendLoginOTP(user.PhoneNumber, models.KindDriver)
	require.NoError(t, err)

	stored, err := store.GetUser(user.ID)
	require.NoError(t, err)
	issued := time.Now().Add(-301 * time.Second)
	stored.OTPCreatedAt = &issued
	require.NoError(t, store.UpdateUser(stored))

	_, _, _, err = svc.Login(user.PhoneNumber, code)
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestSendLoginOTPRoleAndStateChecks(t *testing.T) {
	store, svc := newTestRegistration(t)

	_, err := svc.SendLoginOTP("9111111111", models.KindDriver)
	assert.ErrorIs(t, err, ErrUserNotFound)

	driver := registerVerifiedDriver(t, svc, "9000000012")
	_, err = svc.SendLoginOTP(driver.PhoneNumber, models.KindParent)
	assert.ErrorIs(t, err, ErrInvalidUserType)

	code, err := svc.Begin(parentPending("9000000013"))
	require.NoError(t, err)
	parent, _, err := svc.VerifyAndMaterialize(models.KindParent, "9000000013", code)
	require.NoError(t, err)
	_, err = svc.SendLoginOTP(parent.PhoneNumber, models.KindDriver)
	assert.ErrorIs(t, err, ErrInvalidUserType)

	driver.IsActive = false
	require.NoError(t, store.UpdateUser(driver))
	_, err = svc.SendLoginOTP(driver.PhoneNumber, models.KindDriver)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestLoginDriverInfoSoftFails(t *testing.T) {
	store, svc := newTestRegistration(t)
	user := registerVerifiedDriver(t, svc, "9000000014")

	// Remove the mapping; login still succeeds, just without info
	profile, err := store.GetDriverProfileByUser(user.ID)
	require.NoError(t, err)
	mapping, err := store.GetMappingByDriver(profile.ID)
	require.NoError(t, err)
	require.NoError(t, store.DeleteDriverMapping(mapping.ID))

	code, err := svc.SendLoginOTP(user.PhoneNumber, models.KindDriver)
	require.NoError(t, err)

	_, tokens, info, err := svc.Login(user.PhoneNumber, code)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Access)
	assert.Nil(t, info)
}

// brokenMappingStore fails the mapping transaction, standing in for a
// database error inside ResolveDriverMapping.
type brokenMappingStore struct {
	*storage.MemoryStore
}

func (s *brokenMappingStore) ResolveDriverMapping(driverID uint, collegeName, startShift, endShift string) (*models.DriverCollegeMapping, bool, error) {
	return nil, false, fmt.Errorf("college insert failed")
}

func TestVerifyMappingFailureLeavesUserCommitted(t *testing.T) {
	mem := storage.NewMemoryStore()
	store := &brokenMappingStore{MemoryStore: mem}
	svc := NewRegistrationService(store, NewTokenService(), NewMappingService(store), nil)

	code, err := svc.Begin(driverPending("9000000042"))
	require.NoError(t, err)

	_, _, err = svc.VerifyAndMaterialize(models.KindDriver, "9000000042", code)
	var mappingErr *MappingError
	require.ErrorAs(t, err, &mappingErr)

	// User and profile stay committed and the pending row survives the
	// failed mapping step.
	user, err := mem.GetUserByPhone("9000000042")
	require.NoError(t, err)
	_, err = mem.GetDriverProfileByUser(user.ID)
	assert.NoError(t, err)
	_, err = mem.GetPendingRegistrationByPhone("9000000042")
	assert.NoError(t, err)
}

func TestMappingErrorSurfacesAsServerError(t *testing.T) {
	// Error identity survives wrapping so handlers can map it to 500.
	inner := errors.New("constraint violation")
	err := error(&MappingError{Err: inner})

	var mappingErr *MappingError
	assert.ErrorAs(t, err, &mappingErr)
	assert.ErrorIs(t, err, inner)
}
