package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/services"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

// failureStatus maps the service error taxonomy onto HTTP statuses:
// missing records are 404, mapping transaction failures are 500,
// everything else in the taxonomy is a 400.
func failureStatus(err error) int {
	var mappingErr *services.MappingError
	switch {
	case errors.As(err, &mappingErr):
		return fiber.StatusInternalServerError
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNoPendingRegistration):
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadRequest
	}
}

func failJSON(c *fiber.Ctx, err error) error {
	return c.Status(failureStatus(err)).JSON(fiber.Map{
		"detail": err.Error(),
	})
}

// userPayload serializes a user together with its profile, mirroring
// the registration/login response shape.
func userPayload(store storage.Store, user *models.User) fiber.Map {
	payload := fiber.Map{
		"id":           user.ID,
		"phone_number": user.PhoneNumber,
		"is_driver":    user.IsDriver,
		"is_student":   user.IsStudent,
		"is_active":    user.IsActive,
		"date_joined":  user.CreatedAt,
	}

	if user.IsDriver {
		if profile, err := store.GetDriverProfileByUser(user.ID); err == nil {
			payload["profile"] = profile
		}
	} else {
		if profile, err := store.GetParentProfileByUser(user.ID); err == nil {
			payload["profile"] = profile
		}
	}
	return payload
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeShift parses a shift time and normalizes it to zero-padded
// "HH:MM" so timing resolution compares equal strings.
func normalizeShift(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

// validDate checks a YYYY-MM-DD date string.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
