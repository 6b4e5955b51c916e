package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

type sessionApplicationService interface {
	RequestSession(ctx context.Context, parentID int64, input services.RequestSessionInput) (*models.Session, error)
	ListSessions(ctx context.Context, actorID int64, role string, filter repository.SessionListFilter) ([]models.Session, error)
	GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.Session, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, sessionID int64, requestedStatus string) (*models.Session, error)
	Reschedule(ctx context.Context, actorID int64, role string, sessionID int64, input services.RescheduleInput) (*models.Session, error)
}

type SessionHandler struct {
	service sessionApplicationService
}

func NewSessionHandler(service sessionApplicationService) *SessionHandler {
	return &SessionHandler{service: service}
}

type createSessionRequest struct {
	TutorID         int64   `json:"tutor_id"`
	ChildID         int64   `json:"child_id"`
	SubjectID       int64   `json:"subject_id"`
	ScheduledAt     string  `json:"scheduled_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Location        *string `json:"location"`
	Notes           *string `json:"notes"`
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	parentID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "scheduled_at must be an RFC3339 timestamp")
	}

	session, err := h.service.RequestSession(c.Context(), parentID, services.RequestSessionInput{
		TutorID:         req.TutorID,
		ChildID:         req.ChildID,
		SubjectID:       req.SubjectID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Notes:           req.Notes,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"session": session}, "Session requested")
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	sessions, err := h.service.ListSessions(c.Context(), accountID, authRole(c), repository.SessionListFilter{
		Status:    c.Query("status"),
		Timeframe: c.Query("timeframe"),
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"sessions": sessions}, "OK")
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	session, err := h.service.GetSession(c.Context(), accountID, authRole(c), int64(sessionID))
	if err != nil {
		return mapSessionError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"session": session}, "OK")
}

type updateSessionStatusRequest struct {
	Status string `json:"status"`
}

func (h *SessionHandler) UpdateSessionStatus(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	var req updateSessionStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return respondError(c, fiber.StatusBadRequest, "status is required")
	}

	session, err := h.service.UpdateStatus(c.Context(), accountID, authRole(c), int64(sessionID), req.Status)
	if err != nil {
		return mapSessionError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"session": session}, "Session updated")
}

type rescheduleSessionRequest struct {
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *SessionHandler) RescheduleSession(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	var req rescheduleSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "scheduled_at must be an RFC3339 timestamp")
	}

	session, err := h.service.Reschedule(c.Context(), accountID, authRole(c), int64(sessionID), services.RescheduleInput{
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"session": session}, "Session rescheduled")
}

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Session not found")
	case errors.Is(err, services.ErrTutorNotFound):
		return respondError(c, fiber.StatusNotFound, "Tutor not found")
	case errors.Is(err, services.ErrChildNotFound):
		return respondError(c, fiber.StatusNotFound, "Child not found")
	case errors.Is(err, services.ErrSubjectNotFound):
		return respondError(c, fiber.StatusNotFound, "Subject not found")
	case errors.Is(err, services.ErrForbidden):
		return respondError(c, fiber.StatusForbidden, "You do not have access to this session")
	case errors.Is(err, services.ErrConflict):
		return respondError(c, fiber.StatusConflict, "The tutor already has a session in that time slot")
	case errors.Is(err, services.ErrInvalidStateTransition):
		return respondError(c, fiber.StatusUnprocessableEntity, "Session cannot move to the requested status")
	case errors.Is(err, services.ErrInvalidStatus):
		return respondError(c, fiber.StatusBadRequest, "Unknown session status")
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, "Invalid session details")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process session")
	}
}
