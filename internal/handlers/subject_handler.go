package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type SubjectHandler struct {
	subjectRepo *repository.SubjectRepository
}

func NewSubjectHandler(subjectRepo *repository.SubjectRepository) *SubjectHandler {
	return &SubjectHandler{subjectRepo: subjectRepo}
}

func (h *SubjectHandler) ListSubjects(c *fiber.Ctx) error {
	subjects, err := h.subjectRepo.List(c.Context(), c.Query("category"))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch subjects")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"subjects": subjects}, "OK")
}

func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	subjectID, err := c.ParamsInt("id")
	if err != nil || subjectID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid subject id")
	}

	subject, err := h.subjectRepo.GetByID(c.Context(), int64(subjectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Subject not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch subject")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"subject": subject}, "OK")
}

type createSubjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	var req createSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return respondError(c, fiber.StatusBadRequest, "name is required")
	}

	subject := &models.Subject{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}
	if err := h.subjectRepo.Create(c.Context(), subject); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return respondError(c, fiber.StatusConflict, "Subject already exists")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to create subject")
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"subject": subject}, "Subject created")
}

type updateSubjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	subjectID, err := c.ParamsInt("id")
	if err != nil || subjectID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid subject id")
	}

	var req updateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return respondError(c, fiber.StatusBadRequest, "name cannot be empty")
	}

	subject, err := h.subjectRepo.Update(c.Context(), int64(subjectID), repository.UpdateSubjectInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Subject not found")
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return respondError(c, fiber.StatusConflict, "Subject name already in use")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update subject")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"subject": subject}, "Subject updated")
}

// DeleteSubject refuses to remove a subject that sessions, relationships or
// tutor links still reference. The foreign keys surface that as a 23503.
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	subjectID, err := c.ParamsInt("id")
	if err != nil || subjectID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid subject id")
	}

	deleted, err := h.subjectRepo.Delete(c.Context(), int64(subjectID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return respondError(c, fiber.StatusConflict, "Subject is still in use")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete subject")
	}
	if !deleted {
		return respondError(c, fiber.StatusNotFound, "Subject not found")
	}

	return respondData(c, fiber.StatusOK, nil, "Subject deleted")
}
