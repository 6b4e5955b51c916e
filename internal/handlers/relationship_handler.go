package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

type relationshipApplicationService interface {
	Create(ctx context.Context, parentID, tutorID, subjectID int64) (*models.Relationship, error)
	List(ctx context.Context, actorID int64, role string) ([]models.Relationship, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, relationshipID int64, requestedStatus string) (*models.Relationship, error)
}

type RelationshipHandler struct {
	service relationshipApplicationService
}

func NewRelationshipHandler(service relationshipApplicationService) *RelationshipHandler {
	return &RelationshipHandler{service: service}
}

type createRelationshipRequest struct {
	TutorID   int64 `json:"tutor_id"`
	SubjectID int64 `json:"subject_id"`
}

func (h *RelationshipHandler) CreateRelationship(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req createRelationshipRequest
	if err := c.BodyParser(&req); err != nil || req.TutorID <= 0 || req.SubjectID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "tutor_id and subject_id are required")
	}

	relationship, err := h.service.Create(c.Context(), parentID, req.TutorID, req.SubjectID)
	if err != nil {
		return mapRelationshipError(c, err)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"relationship": relationship}, "Relationship created")
}

func (h *RelationshipHandler) ListRelationships(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	relationships, err := h.service.List(c.Context(), accountID, authRole(c))
	if err != nil {
		return mapRelationshipError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"relationships": relationships}, "OK")
}

type updateRelationshipRequest struct {
	Status string `json:"status"`
}

func (h *RelationshipHandler) UpdateRelationshipStatus(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	relationshipID, err := c.ParamsInt("id")
	if err != nil || relationshipID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid relationship id")
	}

	var req updateRelationshipRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return respondError(c, fiber.StatusBadRequest, "status is required")
	}

	relationship, err := h.service.UpdateStatus(c.Context(), accountID, authRole(c), int64(relationshipID), req.Status)
	if err != nil {
		return mapRelationshipError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"relationship": relationship}, "Relationship updated")
}

func mapRelationshipError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Relationship not found")
	case errors.Is(err, services.ErrTutorNotFound):
		return respondError(c, fiber.StatusNotFound, "Tutor not found")
	case errors.Is(err, services.ErrSubjectNotFound):
		return respondError(c, fiber.StatusNotFound, "Subject not found")
	case errors.Is(err, services.ErrForbidden):
		return respondError(c, fiber.StatusForbidden, "You do not have access to this relationship")
	case errors.Is(err, services.ErrInvalidStatus):
		return respondError(c, fiber.StatusBadRequest, "Status must be active or inactive")
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, "Invalid relationship details")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process relationship")
	}
}
