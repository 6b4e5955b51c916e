package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

type ratingApplicationService interface {
	SubmitRating(ctx context.Context, actorID int64, role string, input services.SubmitRatingInput) (*models.Rating, error)
	ListTutorRatings(ctx context.Context, tutorID int64) ([]models.Rating, error)
	ListParentRatings(ctx context.Context, parentID int64) ([]models.Rating, error)
}

type RatingHandler struct {
	service ratingApplicationService
}

func NewRatingHandler(service ratingApplicationService) *RatingHandler {
	return &RatingHandler{service: service}
}

type submitRatingRequest struct {
	TutorID  int64   `json:"tutor_id"`
	ParentID int64   `json:"parent_id"`
	Score    int     `json:"score"`
	Comment  *string `json:"comment"`
}

// SubmitRating handles both directions. A parent posts tutor_id, a tutor
// posts parent_id; resubmitting overwrites the earlier score.
func (h *RatingHandler) SubmitRating(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	role := authRole(c)

	var req submitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	subjectAccountID := req.TutorID
	if subjectAccountID == 0 {
		subjectAccountID = req.ParentID
	}
	if subjectAccountID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "tutor_id or parent_id is required")
	}

	rating, err := h.service.SubmitRating(c.Context(), accountID, role, services.SubmitRatingInput{
		SubjectAccountID: subjectAccountID,
		Score:            req.Score,
		Comment:          req.Comment,
	})
	if err != nil {
		return mapRatingError(c, err)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"rating": rating}, "Rating saved")
}

// ListTutorRatings returns the parent-to-tutor reviews of one tutor.
func (h *RatingHandler) ListTutorRatings(c *fiber.Ctx) error {
	tutorID, err := c.ParamsInt("id")
	if err != nil || tutorID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid tutor id")
	}

	ratings, err := h.service.ListTutorRatings(c.Context(), int64(tutorID))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch ratings")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"ratings": ratings}, "OK")
}

// ListParentRatings returns the tutor-to-parent reviews of one parent.
func (h *RatingHandler) ListParentRatings(c *fiber.Ctx) error {
	parentID, err := c.ParamsInt("id")
	if err != nil || parentID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid parent id")
	}

	ratings, err := h.service.ListParentRatings(c.Context(), int64(parentID))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch ratings")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"ratings": ratings}, "OK")
}

func mapRatingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrTutorNotFound):
		return respondError(c, fiber.StatusNotFound, "Tutor not found")
	case errors.Is(err, services.ErrParentNotFound):
		return respondError(c, fiber.StatusNotFound, "Parent not found")
	case errors.Is(err, services.ErrForbidden):
		return respondError(c, fiber.StatusForbidden, "You cannot rate this account")
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, "Score must be between 1 and 5")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to save rating")
	}
}
