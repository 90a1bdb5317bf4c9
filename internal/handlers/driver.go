package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/collegecab/collegecab-backend/internal/middleware"
	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/services"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

// DriverHandler handles the driver registration/login flow plus the
// driver's own profile and college mapping endpoints.
type DriverHandler struct {
	store        storage.Store
	registration *services.RegistrationService
	mappings     *services.MappingService
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(store storage.Store, registration *services.RegistrationService, mappings *services.MappingService) *DriverHandler {
	return &DriverHandler{
		store:        store,
		registration: registration,
		mappings:     mappings,
	}
}

// Register handles driver registration step 1: validate the submitted
// fields, create the pending record and hand back the OTP.
func (h *DriverHandler) Register(c *fiber.Ctx) error {
	var req models.DriverRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	if req.FullName == "" || req.PhoneNumber == "" || req.LicenceNo == "" ||
		req.VehicleNo == "" || req.CollegeName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "full_name, phone_number, licence_no, vehicle_no and college_name are required",
		})
	}
	if !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Enter a valid email address.",
		})
	}
	if !validDate(req.LicenceExpDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "licence_exp_date must be a valid YYYY-MM-DD date",
		})
	}

	start, err := normalizeShift(req.StartShift)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "start_shift must be a valid HH:MM time",
		})
	}
	end, err := normalizeShift(req.EndShift)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "end_shift must be a valid HH:MM time",
		})
	}

	if _, err := h.store.GetVehicleType(req.VehicleType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid vehicle_type.",
		})
	}

	pending := &models.PendingRegistration{
		PhoneNumber:    req.PhoneNumber,
		Kind:           models.KindDriver,
		FullName:       req.FullName,
		DOB:            req.DOB,
		Email:          req.Email,
		LicenceNo:      req.LicenceNo,
		LicenceExpDate: req.LicenceExpDate,
		VehicleTypeID:  req.VehicleType,
		VehicleNo:      req.VehicleNo,
		CollegeName:    req.CollegeName,
		StartShift:     start,
		EndShift:       end,
		IsDriver:       req.IsDriver,
		IsStudent:      req.IsStudent,
	}

	code, err := h.registration.Begin(pending)
	if err != nil {
		return failJSON(c, err)
	}

	// The OTP is echoed in the response because no real SMS channel is
	// wired in demo mode.
	return c.JSON(fiber.Map{
		"message":      "Registration step 1 complete. OTP sent (demo).",
		"phone_number": pending.PhoneNumber,
		"otp_code":     code,
	})
}

// VerifyOTP handles driver registration step 2.
func (h *DriverHandler) VerifyOTP(c *fiber.Ctx) error {
	var req models.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if req.PhoneNumber == "" || req.OTPCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "phone_number and otp_code are required",
		})
	}
	if !digitsOnly(req.OTPCode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "OTP must contain digits only.",
		})
	}

	user, tokens, err := h.registration.VerifyAndMaterialize(models.KindDriver, req.PhoneNumber, req.OTPCode)
	if err != nil {
		return failJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    userPayload(h.store, user),
		"refresh": tokens.Refresh,
		"access":  tokens.Access,
		"message": "Registration successful",
	})
}

// SendOTP generates a login OTP for an existing driver.
func (h *DriverHandler) SendOTP(c *fiber.Ctx) error {
	var req models.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if req.PhoneNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Phone number is required.",
		})
	}

	code, err := h.registration.SendLoginOTP(req.PhoneNumber, models.KindDriver)
	if err != nil {
		return failJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "OTP sent successfully.",
		"phone_number": req.PhoneNumber,
		"otp_code":     code,
	})
}

// Login verifies a driver login OTP and returns tokens plus the
// driver's college/shift info when it can be resolved.
func (h *DriverHandler) Login(c *fiber.Ctx) error {
	var req models.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if req.PhoneNumber == "" || req.OTPCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "phone_number and otp_code are required",
		})
	}

	user, tokens, info, err := h.registration.Login(req.PhoneNumber, req.OTPCode)
	if err != nil {
		return failJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"user":        userPayload(h.store, user),
		"refresh":     tokens.Refresh,
		"access":      tokens.Access,
		"driver_info": info,
		"message":     "Login successful",
	})
}

// ListVehicleTypes returns the active vehicle types for the
// registration form.
func (h *DriverHandler) ListVehicleTypes(c *fiber.Ctx) error {
	types, err := h.store.GetActiveVehicleTypes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list vehicle types",
		})
	}
	return c.JSON(types)
}

// ownProfile loads the profile for :driver_id and enforces that it
// belongs to the authenticated user.
func (h *DriverHandler) ownProfile(c *fiber.Ctx) (*models.DriverProfile, error) {
	id, err := c.ParamsInt("driver_id")
	if err != nil || id <= 0 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid driver id",
		})
	}

	profile, err := h.store.GetDriverProfile(uint(id))
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "Driver profile not found",
		})
	}
	if profile.UserID != middleware.AuthenticatedUserID(c) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "You do not have permission to perform this action.",
		})
	}
	return profile, nil
}

// GetProfile returns the authenticated driver's profile.
func (h *DriverHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.ownProfile(c)
	if profile == nil {
		return err
	}

	payload := fiber.Map{"profile": profile}
	if vt, err := h.store.GetVehicleType(profile.VehicleTypeID); err == nil {
		payload["vehicle_type_name"] = vt.VehicleName
	}
	return c.JSON(payload)
}

// UpdateProfile applies a partial update. The licence number has no
// place in the update body - it is read-only after creation.
func (h *DriverHandler) UpdateProfile(c *fiber.Ctx) error {
	profile, err := h.ownProfile(c)
	if profile == nil {
		return err
	}

	var req models.DriverProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.DOB != nil {
		profile.DOB = *req.DOB
	}
	if req.Email != nil {
		if !strings.Contains(*req.Email, "@") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Enter a valid email address.",
			})
		}
		profile.Email = *req.Email
	}
	if req.LicenceExpDate != nil {
		if !validDate(*req.LicenceExpDate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "licence_exp_date must be a valid YYYY-MM-DD date",
			})
		}
		profile.LicenceExpDate = *req.LicenceExpDate
	}
	if req.VehicleType != nil {
		if _, err := h.store.GetVehicleType(*req.VehicleType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Invalid vehicle_type.",
			})
		}
		profile.VehicleTypeID = *req.VehicleType
	}
	if req.VehicleNo != nil {
		profile.VehicleNo = *req.VehicleNo
	}

	if err := h.store.UpdateDriverProfile(profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to update driver profile",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "data has been successfully updated",
		"updated_data": profile,
	})
}

// ownMapping loads the mapping for :pk and enforces that it belongs to
// the authenticated driver.
func (h *DriverHandler) ownMapping(c *fiber.Ctx) (*models.DriverCollegeMapping, *models.DriverProfile, error) {
	id, err := c.ParamsInt("pk")
	if err != nil || id <= 0 {
		return nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid mapping id",
		})
	}

	mapping, err := h.store.GetDriverMapping(uint(id))
	if err != nil {
		return nil, nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "Driver mapping not found",
		})
	}

	profile, err := h.store.GetDriverProfileByUser(middleware.AuthenticatedUserID(c))
	if err != nil || mapping.DriverID != profile.ID {
		return nil, nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "You do not have permission to perform this action.",
		})
	}
	return mapping, profile, nil
}

// GetMapping returns the driver's college/shift assignment.
func (h *DriverHandler) GetMapping(c *fiber.Ctx) error {
	mapping, _, err := h.ownMapping(c)
	if mapping == nil {
		return err
	}

	payload := fiber.Map{"mapping": mapping}
	if college, err := h.store.GetCollege(mapping.CollegeID); err == nil {
		payload["college_name"] = college.CollegeName
	}
	if timing, err := h.store.GetTiming(mapping.TimingID); err == nil {
		payload["start_shift"] = timing.StartShift
		payload["end_shift"] = timing.EndShift
	}
	return c.JSON(payload)
}

// UpdateMapping re-assigns the driver to a new college/shift. The old
// mapping row is replaced, never duplicated.
func (h *DriverHandler) UpdateMapping(c *fiber.Ctx) error {
	mapping, profile, err := h.ownMapping(c)
	if mapping == nil {
		return err
	}

	var req models.MappingUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if req.CollegeName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "college_name is required",
		})
	}
	start, serr := normalizeShift(req.StartShift)
	end, eerr := normalizeShift(req.EndShift)
	if serr != nil || eerr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "start_shift and end_shift must be valid HH:MM times",
		})
	}

	result, rerr := h.mappings.Reassign(mapping.ID, profile.ID, req.CollegeName, start, end)
	if rerr != nil {
		return failJSON(c, rerr)
	}

	return c.JSON(fiber.Map{
		"message": result.Message,
		"mapping": result.Mapping,
	})
}

// DeleteMapping removes the driver's college assignment.
func (h *DriverHandler) DeleteMapping(c *fiber.Ctx) error {
	mapping, _, err := h.ownMapping(c)
	if mapping == nil {
		return err
	}

	if err := h.store.DeleteDriverMapping(mapping.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to delete driver mapping",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Driver mapping deleted successfully.",
	})
}
