package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/collegecab/collegecab-backend/internal/middleware"
	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

// ChildrenHandler is plain CRUD over child records, scoped to the
// authenticated parent.
type ChildrenHandler struct {
	store storage.Store
}

// NewChildrenHandler creates a new children handler
func NewChildrenHandler(store storage.Store) *ChildrenHandler {
	return &ChildrenHandler{store: store}
}

func (h *ChildrenHandler) validateContactFields(class, contact, alternate string) error {
	if !models.ValidClassLabel(class) {
		return fmt.Errorf("Only alphanumeric characters are allowed.")
	}
	if !models.ValidContactNumber(contact) {
		return fmt.Errorf("contact_person_number must be exactly 10 digits")
	}
	if alternate != "" && !models.ValidContactNumber(alternate) {
		return fmt.Errorf("alternate_number must be exactly 10 digits")
	}
	return nil
}

// Add creates a child record under the authenticated parent.
func (h *ChildrenHandler) Add(c *fiber.Ctx) error {
	var req models.ChildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	if req.FullName == "" || req.ContactPersonName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "full_name and contact_person_name are required",
		})
	}
	if err := h.validateContactFields(req.ChildrenClass, req.ContactPersonNumber, req.AlternateNumber); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": err.Error(),
		})
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "dob must be a valid YYYY-MM-DD date",
		})
	}

	if _, err := h.store.GetCollege(req.CollegeID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid college_id.",
		})
	}
	if _, err := h.store.GetTiming(req.TimingID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid timing_id.",
		})
	}

	child := &models.Child{
		ParentID:            middleware.AuthenticatedUserID(c),
		CollegeID:           req.CollegeID,
		TimingID:            req.TimingID,
		FullName:            req.FullName,
		DOB:                 dob,
		Age:                 req.Age,
		ChildrenClass:       req.ChildrenClass,
		ContactPersonName:   req.ContactPersonName,
		ContactPersonNumber: req.ContactPersonNumber,
		AlternateNumber:     req.AlternateNumber,
	}

	if _, err := h.store.CreateChild(child); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to create child record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "data has been successfully registered",
		"created_data": child,
	})
}

// ownChild loads the child for :pk and enforces parent ownership.
func (h *ChildrenHandler) ownChild(c *fiber.Ctx) (*models.Child, error) {
	id, err := c.ParamsInt("pk")
	if err != nil || id <= 0 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid child id",
		})
	}

	child, err := h.store.GetChild(uint(id))
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "Child record not found",
		})
	}
	if child.ParentID != middleware.AuthenticatedUserID(c) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "You do not have permission to perform this action.",
		})
	}
	return child, nil
}

// Edit partially updates a child record.
func (h *ChildrenHandler) Edit(c *fiber.Ctx) error {
	child, err := h.ownChild(c)
	if child == nil {
		return err
	}

	var req models.ChildUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	if req.CollegeID != nil {
		if _, err := h.store.GetCollege(*req.CollegeID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Invalid college_id.",
			})
		}
		child.CollegeID = *req.CollegeID
	}
	if req.TimingID != nil {
		if _, err := h.store.GetTiming(*req.TimingID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Invalid timing_id.",
			})
		}
		child.TimingID = *req.TimingID
	}
	if req.FullName != nil {
		child.FullName = *req.FullName
	}
	if req.DOB != nil {
		dob, perr := time.Parse("2006-01-02", *req.DOB)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "dob must be a valid YYYY-MM-DD date",
			})
		}
		child.DOB = dob
	}
	if req.Age != nil {
		child.Age = *req.Age
	}
	if req.ChildrenClass != nil {
		if !models.ValidClassLabel(*req.ChildrenClass) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Only alphanumeric characters are allowed.",
			})
		}
		child.ChildrenClass = *req.ChildrenClass
	}
	if req.ContactPersonName != nil {
		child.ContactPersonName = *req.ContactPersonName
	}
	if req.ContactPersonNumber != nil {
		if !models.ValidContactNumber(*req.ContactPersonNumber) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "contact_person_number must be exactly 10 digits",
			})
		}
		child.ContactPersonNumber = *req.ContactPersonNumber
	}
	if req.AlternateNumber != nil {
		if *req.AlternateNumber != "" && !models.ValidContactNumber(*req.AlternateNumber) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "alternate_number must be exactly 10 digits",
			})
		}
		child.AlternateNumber = *req.AlternateNumber
	}

	if err := h.store.UpdateChild(child); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to update child record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "data has been successfully updated",
		"updated_data": child,
	})
}

// Delete removes a child record.
func (h *ChildrenHandler) Delete(c *fiber.Ctx) error {
	child, err := h.ownChild(c)
	if child == nil {
		return err
	}

	if err := h.store.DeleteChild(child.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to delete child record",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Data has been successfully deleted",
	})
}

// ListByParent returns all children of a parent. An empty result gets a
// descriptive message rather than an empty array.
func (h *ChildrenHandler) ListByParent(c *fiber.Ctx) error {
	parentID, err := c.ParamsInt("parent_id")
	if err != nil || parentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid parent id",
		})
	}
	if uint(parentID) != middleware.AuthenticatedUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "You do not have permission to perform this action.",
		})
	}

	children, err := h.store.GetChildrenByParent(uint(parentID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list children",
		})
	}

	if len(children) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No record found in the table for this ID",
			"sms":     fmt.Sprintf("No children records found for parent ID %d.", parentID),
		})
	}
	return c.JSON(children)
}
