package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/storage"
	"github.com/collegecab/collegecab-backend/internal/utils"
)

// RegistrationService is the OTP-gated registration state machine. One
// instance serves both the driver and the parent flow - the pending
// record's kind decides which profile gets materialized and whether the
// college mapping step runs.
//
// Lifecycle of a pending record:
//
//	Begin        -> ACTIVE (any earlier pending record for the phone is discarded)
//	bad code     -> ACTIVE, attempt count incremented
//	attempts out -> deleted (terminal)
//	expired      -> deleted (terminal)
//	good code    -> permanent user + profile created, record deleted
type RegistrationService struct {
	store    storage.Store
	tokens   *TokenService
	mappings *MappingService
	notifier Notifier // nil means demo mode: code is only logged
}

func NewRegistrationService(store storage.Store, tokens *TokenService, mappings *MappingService, notifier Notifier) *RegistrationService {
	return &RegistrationService{
		store:    store,
		tokens:   tokens,
		mappings: mappings,
		notifier: notifier,
	}
}

// Begin creates a pending registration for the submitted fields and
// returns the plaintext OTP. Registration is permanently blocked once a
// permanent user claims the phone; an earlier pending record for the
// same phone is silently superseded.
func (s *RegistrationService) Begin(pending *models.PendingRegistration) (string, error) {
	if _, err := s.store.GetUserByPhone(pending.PhoneNumber); err == nil {
		return "", ErrUserAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}

	if err := s.store.DeletePendingRegistrationsByPhone(pending.PhoneNumber); err != nil {
		return "", fmt.Errorf("failed to supersede pending registration: %w", err)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	pending.SetOTP(code, time.Now())
	pending.MaxAttempts = models.DefaultMaxAttempts
	pending.AttemptCount = 0
	pending.IsActive = true

	if _, err := s.store.CreatePendingRegistration(pending); err != nil {
		return "", fmt.Errorf("failed to create pending registration: %w", err)
	}

	s.deliver(pending.PhoneNumber, code)
	return code, nil
}

// VerifyAndMaterialize checks the submitted code against the pending
// record for the phone and, on success, creates the permanent user and
// profile, runs the college mapping for drivers, deletes the pending
// record and issues session tokens.
func (s *RegistrationService) VerifyAndMaterialize(kind, phone, code string) (*models.User, *TokenPair, error) {
	pending, err := s.store.GetPendingRegistrationByPhone(phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNoPendingRegistration
		}
		return nil, nil, err
	}
	if pending.Kind != kind {
		return nil, nil, ErrNoPendingRegistration
	}

	if pending.AttemptCount >= pending.MaxAttempts {
		_ = s.store.DeletePendingRegistration(pending.ID)
		return nil, nil, ErrMaxAttemptsExceeded
	}

	if pending.OTPExpired(time.Now()) {
		_ = s.store.DeletePendingRegistration(pending.ID)
		return nil, nil, ErrOTPExpired
	}

	if !pending.OTPMatches(code) {
		pending.AttemptCount++
		if err := s.store.UpdatePendingRegistration(pending); err != nil {
			return nil, nil, err
		}
		return nil, nil, &InvalidOTPError{AttemptsLeft: pending.AttemptsLeft()}
	}

	user := &models.User{
		PhoneNumber: pending.PhoneNumber,
		IsDriver:    pending.IsDriver,
		IsStudent:   pending.IsStudent,
		IsActive:    true,
	}
	if _, err := s.store.CreateUser(user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	if pending.Kind == models.KindDriver {
		profile := &models.DriverProfile{
			UserID:         user.ID,
			FullName:       pending.FullName,
			DOB:            pending.DOB,
			Email:          pending.Email,
			LicenceNo:      pending.LicenceNo,
			LicenceExpDate: pending.LicenceExpDate,
			VehicleTypeID:  pending.VehicleTypeID,
			VehicleNo:      pending.VehicleNo,
		}
		if _, err := s.store.CreateDriverProfile(profile); err != nil {
			return nil, nil, fmt.Errorf("failed to create driver profile: %w", err)
		}

		// Mapping failure leaves the already-committed user and
		// profile in place; the caller sees a server error.
		if _, err := s.mappings.ResolveAndMap(profile.ID, pending.CollegeName, pending.StartShift, pending.EndShift); err != nil {
			return nil, nil, err
		}
	} else {
		profile := &models.ParentProfile{
			UserID:   user.ID,
			FullName: pending.FullName,
			DOB:      pending.DOB,
			Email:    pending.Email,
		}
		if _, err := s.store.CreateParentProfile(profile); err != nil {
			return nil, nil, fmt.Errorf("failed to create parent profile: %w", err)
		}
	}

	if err := s.store.DeletePendingRegistration(pending.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to delete pending registration: %w", err)
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// SendLoginOTP generates a fresh login code for an existing user,
// overwriting any earlier one. The driver flow only accepts pure
// drivers; the parent flow only accepts student/parent accounts.
func (s *RegistrationService) SendLoginOTP(phone, kind string) (string, error) {
	user, err := s.lookupActiveUser(phone)
	if err != nil {
		return "", err
	}

	switch kind {
	case models.KindDriver:
		if !user.IsDriver || user.IsStudent {
			return "", ErrInvalidUserType
		}
	case models.KindParent:
		if !user.IsStudent {
			return "", ErrInvalidUserType
		}
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	user.SetOTP(code, time.Now())
	if err := s.store.UpdateUser(user); err != nil {
		return "", fmt.Errorf("failed to store login OTP: %w", err)
	}

	s.deliver(phone, code)
	return code, nil
}

// Login verifies a login code. Unlike registration there is no attempt
// counter - a wrong code can be retried until the code expires. On
// success the credential is cleared so the code cannot be replayed, and
// drivers get their profile/college info resolved alongside the tokens.
func (s *RegistrationService) Login(phone, code string) (*models.User, *TokenPair, *DriverInfo, error) {
	user, err := s.lookupActiveUser(phone)
	if err != nil {
		return nil, nil, nil, err
	}

	if !user.OTPMatches(code) {
		return nil, nil, nil, ErrInvalidOTP
	}
	if user.OTPExpired(time.Now()) {
		return nil, nil, nil, ErrOTPExpired
	}

	user.ClearOTP()
	if err := s.store.UpdateUser(user); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to clear login OTP: %w", err)
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, nil, err
	}

	var info *DriverInfo
	if user.IsDriver {
		info = s.resolveDriverInfo(user)
	}
	return user, tokens, info, nil
}

func (s *RegistrationService) lookupActiveUser(phone string) (*models.User, error) {
	user, err := s.store.GetUserByPhone(phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

func (s *RegistrationService) deliver(phone, code string) {
	if s.notifier == nil {
		log.Printf("📱 OTP for %s is %s (demo mode, no SMS configured)", phone, code)
		return
	}
	if err := s.notifier.SendOTP(phone, code); err != nil {
		// Delivery failure is not fatal: the code is still echoed in
		// the response for now.
		log.Printf("⚠️  OTP delivery to %s failed: %v", phone, err)
	}
}

// DriverInfo is the driver block attached to a successful driver login.
type DriverInfo struct {
	FullName       string `json:"full_name"`
	DOB            string `json:"dob"`
	Email          string `json:"email"`
	LicenceNo      string `json:"licence_no"`
	LicenceExpDate string `json:"licence_exp_date"`
	VehicleType    string `json:"vehicle_type"`
	VehicleNo      string `json:"vehicle_no"`
	CollegeName    string `json:"college_name"`
	StartShift     string `json:"start_shift"`
	EndShift       string `json:"end_shift"`
}

// resolveDriverInfo follows profile -> mapping -> college/timing. Any
// missing link degrades to no driver info rather than failing the login.
func (s *RegistrationService) resolveDriverInfo(user *models.User) *DriverInfo {
	profile, err := s.store.GetDriverProfileByUser(user.ID)
	if err != nil {
		return nil
	}

	info := &DriverInfo{
		FullName:       profile.FullName,
		DOB:            profile.DOB,
		Email:          profile.Email,
		LicenceNo:      profile.LicenceNo,
		LicenceExpDate: profile.LicenceExpDate,
		VehicleNo:      profile.VehicleNo,
	}
	if vt, err := s.store.GetVehicleType(profile.VehicleTypeID); err == nil {
		info.VehicleType = vt.VehicleName
	}

	mapping, err := s.store.GetMappingByDriver(profile.ID)
	if err != nil {
		return nil
	}
	if college, err := s.store.GetCollege(mapping.CollegeID); err == nil {
		info.CollegeName = college.CollegeName
	}
	if timing, err := s.store.GetTiming(mapping.TimingID); err == nil {
		info.StartShift = timing.StartShift
		info.EndShift = timing.EndShift
	}
	return info
}
