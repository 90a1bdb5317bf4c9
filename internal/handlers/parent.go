package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/services"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

// ParentHandler handles the parent registration/login flow. Same state
// machine as drivers, no vehicle or college fields.
type ParentHandler struct {
	store        storage.Store
	registration *services.RegistrationService
}

// NewParentHandler creates a new parent handler
func NewParentHandler(store storage.Store, registration *services.RegistrationService) *ParentHandler {
	return &ParentHandler{
		store:        store,
		registration: registration,
	}
}

// Register handles parent registration step 1.
func (h *ParentHandler) Register(c *fiber.Ctx) error {
	var req models.ParentRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	if req.FullName == "" || req.PhoneNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "full_name and phone_number are required",
		})
	}
	if !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Enter a valid email address.",
		})
	}

	pending := &models.PendingRegistration{
		PhoneNumber: req.PhoneNumber,
		Kind:        models.KindParent,
		FullName:    req.FullName,
		DOB:         req.DOB,
		Email:       req.Email,
		IsStudent:   true,
	}

	code, err := h.registration.Begin(pending)
	if err != nil {
		return failJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "Registration step 1 complete. OTP sent (demo).",
		"phone_number": pending.PhoneNumber,
		"otp_code":     code,
	})
}

// VerifyOTP handles parent registration step 2.
func (h *ParentHandler) VerifyOTP(c *fiber.Ctx) error {
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

	user, tokens, err := h.registration.VerifyAndMaterialize(models.KindParent, req.PhoneNumber, req.OTPCode)
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

// SendOTP generates a login OTP for an existing parent.
func (h *ParentHandler) SendOTP(c *fiber.Ctx) error {
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

	code, err := h.registration.SendLoginOTP(req.PhoneNumber, models.KindParent)
	if err != nil {
		return failJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "OTP sent successfully.",
		"phone_number": req.PhoneNumber,
		"otp_code":     code,
	})
}

// Login verifies a parent login OTP.
func (h *ParentHandler) Login(c *fiber.Ctx) error {
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

	user, tokens, _, err := h.registration.Login(req.PhoneNumber, req.OTPCode)
	if err != nil {
		return failJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"user":    userPayload(h.store, user),
		"refresh": tokens.Refresh,
		"access":  tokens.Access,
		"message": "Login successful",
	})
}
