package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type ChildHandler struct {
	childRepo *repository.ChildRepository
}

func NewChildHandler(childRepo *repository.ChildRepository) *ChildHandler {
	return &ChildHandler{childRepo: childRepo}
}

type createChildRequest struct {
	FullName   string  `json:"full_name"`
	GradeLevel *string `json:"grade_level"`
	Age        *int    `json:"age"`
}

func (h *ChildHandler) CreateChild(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req createChildRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		return respondError(c, fiber.StatusBadRequest, "full_name is required")
	}
	if req.Age != nil && (*req.Age < 1 || *req.Age > 25) {
		return respondError(c, fiber.StatusBadRequest, "age must be between 1 and 25")
	}

	child := &models.Child{
		ParentID:   parentID,
		FullName:   req.FullName,
		GradeLevel: req.GradeLevel,
		Age:        req.Age,
	}
	if err := h.childRepo.Create(c.Context(), child); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create child")
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"child": child}, "Child added")
}

func (h *ChildHandler) ListChildren(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	children, err := h.childRepo.ListByParent(c.Context(), parentID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch children")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"children": children}, "OK")
}

func (h *ChildHandler) GetChild(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid child id")
	}

	child, err := h.childRepo.GetByID(c.Context(), int64(childID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Child not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch child")
	}
	if child.ParentID != parentID {
		return respondError(c, fiber.StatusNotFound, "Child not found")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"child": child}, "OK")
}

type updateChildRequest struct {
	FullName   *string `json:"full_name"`
	GradeLevel *string `json:"grade_level"`
	Age        *int    `json:"age"`
}

func (h *ChildHandler) UpdateChild(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid child id")
	}

	var req updateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return respondError(c, fiber.StatusBadRequest, "full_name cannot be empty")
	}
	if req.Age != nil && (*req.Age < 1 || *req.Age > 25) {
		return respondError(c, fiber.StatusBadRequest, "age must be between 1 and 25")
	}

	child, err := h.childRepo.Update(c.Context(), int64(childID), parentID, repository.UpdateChildInput{
		FullName:   req.FullName,
		GradeLevel: req.GradeLevel,
		Age:        req.Age,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Child not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update child")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"child": child}, "Child updated")
}

func (h *ChildHandler) DeleteChild(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid child id")
	}

	deleted, err := h.childRepo.Delete(c.Context(), int64(childID), parentID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete child")
	}
	if !deleted {
		return respondError(c, fiber.StatusNotFound, "Child not found")
	}

	return respondData(c, fiber.StatusOK, nil, "Child removed")
}
