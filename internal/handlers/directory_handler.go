package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type tutorDirectoryService interface {
	ListTutors(ctx context.Context, filter repository.TutorListFilter) ([]models.TutorListing, int, error)
	GetTutor(ctx context.Context, tutorID int64) (*models.TutorListing, error)
	GetRecommendedTutors(ctx context.Context, parentID int64, limit int) ([]models.TutorWithScore, error)
}

type DirectoryHandler struct {
	service tutorDirectoryService
}

func NewDirectoryHandler(service tutorDirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// ListTutors serves the public tutor directory with optional filters:
// subject_id, min_rating, max_rate, location, search, page, limit.
func (h *DirectoryHandler) ListTutors(c *fiber.Ctx) error {
	page, limit := parsePageAndLimit(c.Query("page"), c.Query("limit"))

	minRating, err := parseNonNegativeFloat(c.Query("min_rating"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid min_rating")
	}
	maxRate, err := parseNonNegativeFloat(c.Query("max_rate"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid max_rate")
	}

	filter := repository.TutorListFilter{
		SubjectID:  int64(c.QueryInt("subject_id", 0)),
		MinRating:  minRating,
		MaxRate:    maxRate,
		Location:   c.Query("location"),
		SearchName: c.Query("search"),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	}

	tutors, total, err := h.service.ListTutors(c.Context(), filter)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch tutors")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"tutors":     tutors,
		"pagination": buildPaginationMeta(page, limit, total),
	}, "OK")
}

func (h *DirectoryHandler) GetRecommendedTutors(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	tutors, err := h.service.GetRecommendedTutors(c.Context(), parentID, limit)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch recommendations")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"tutors": tutors}, "OK")
}

func (h *DirectoryHandler) GetTutor(c *fiber.Ctx) error {
	tutorID, err := c.ParamsInt("id")
	if err != nil || tutorID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid tutor id")
	}

	tutor, err := h.service.GetTutor(c.Context(), int64(tutorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Tutor not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch tutor")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"tutor": tutor}, "OK")
}
