package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

type stubSessionService struct {
	requestResult  *models.Session
	requestErr     error
	listResult     []models.Session
	listErr        error
	getResult      *models.Session
	getErr         error
	updateResult   *models.Session
	updateErr      error
	rescheduleErr  error
	lastActorID    int64
	lastRole       string
	lastSessionID  int64
	lastStatus     string
	lastInput      services.RequestSessionInput
	lastListFilter repository.SessionListFilter
}

func (s *stubSessionService) RequestSession(_ context.Context, parentID int64, input services.RequestSessionInput) (*models.Session, error) {
	s.lastActorID = parentID
	s.lastInput = input
	return s.requestResult, s.requestErr
}

func (s *stubSessionService) ListSessions(_ context.Context, actorID int64, role string, filter repository.SessionListFilter) ([]models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listErr
}

func (s *stubSessionService) GetSession(_ context.Context, actorID int64, role string, sessionID int64) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubSessionService) UpdateStatus(_ context.Context, actorID int64, role string, sessionID int64, requestedStatus string) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	s.lastStatus = requestedStatus
	return s.updateResult, s.updateErr
}

func (s *stubSessionService) Reschedule(_ context.Context, actorID int64, role string, sessionID int64, input services.RescheduleInput) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.updateResult, s.rescheduleErr
}

func newSessionTestApp(service sessionApplicationService, role, userID string) *fiber.App {
	handler := NewSessionHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/sessions", handler.CreateSession)
	app.Get("/api/v1/sessions", handler.ListSessions)
	app.Get("/api/v1/sessions/:id", handler.GetSession)
	app.Put("/api/v1/sessions/:id/status", handler.UpdateSessionStatus)
	app.Put("/api/v1/sessions/:id/reschedule", handler.RescheduleSession)
	return app
}

func TestCreateSessionReturnsCreated(t *testing.T) {
	service := &stubSessionService{
		requestResult: &models.Session{
			ID:              91,
			ParentID:        42,
			TutorID:         7,
			Status:          models.SessionStatusPending,
			DurationMinutes: 60,
		},
	}
	app := newSessionTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{
		"tutor_id": 7,
		"child_id": 3,
		"subject_id": 2,
		"scheduled_at": "2027-03-15T09:00:00Z",
		"duration_minutes": 60,
		"notes": "fractions homework"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 {
		t.Fatalf("expected actor id 42, got %d", service.lastActorID)
	}
	if service.lastInput.TutorID != 7 || service.lastInput.ChildID != 3 || service.lastInput.SubjectID != 2 {
		t.Fatalf("unexpected input: %+v", service.lastInput)
	}
	if service.lastInput.DurationMinutes != 60 {
		t.Fatalf("expected 60 minutes, got %d", service.lastInput.DurationMinutes)
	}
}

func TestCreateSessionRejectsBadTimestamp(t *testing.T) {
	service := &stubSessionService{}
	app := newSessionTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{
		"tutor_id": 7,
		"child_id": 3,
		"subject_id": 2,
		"scheduled_at": "tomorrow at nine",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateSessionReturnsConflictForOverlap(t *testing.T) {
	service := &stubSessionService{requestErr: services.ErrConflict}
	app := newSessionTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{
		"tutor_id": 7,
		"child_id": 3,
		"subject_id": 2,
		"scheduled_at": "2027-03-15T09:00:00Z",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestListSessionsPassesStatusAndTimeframe(t *testing.T) {
	service := &stubSessionService{
		listResult: []models.Session{{ID: 5, Status: models.SessionStatusUpcoming}},
	}
	app := newSessionTestApp(service, models.RoleTutor, "9")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?status=upcoming&timeframe=upcoming", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != models.RoleTutor {
		t.Fatalf("expected tutor role, got %q", service.lastRole)
	}
	if service.lastListFilter.Status != "upcoming" || service.lastListFilter.Timeframe != "upcoming" {
		t.Fatalf("unexpected filter: %+v", service.lastListFilter)
	}
}

func TestGetSessionReturnsNotFound(t *testing.T) {
	service := &stubSessionService{getErr: pgx.ErrNoRows}
	app := newSessionTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateSessionStatusReturnsUnprocessableForInvalidTransition(t *testing.T) {
	service := &stubSessionService{updateErr: services.ErrInvalidStateTransition}
	app := newSessionTestApp(service, models.RoleTutor, "7")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/55/status", strings.NewReader(`{"status":"complete"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastStatus != "complete" {
		t.Fatalf("expected forwarded status, got %q", service.lastStatus)
	}
}

func TestRescheduleSessionReturnsUpdatedSession(t *testing.T) {
	service := &stubSessionService{
		updateResult: &models.Session{ID: 55, Status: models.SessionStatusRescheduled},
	}
	app := newSessionTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/55/reschedule", strings.NewReader(`{
		"scheduled_at": "2027-04-01T15:00:00Z",
		"duration_minutes": 45
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 55 {
		t.Fatalf("expected session id 55, got %d", service.lastSessionID)
	}

	var body struct {
		Data struct {
			Session models.Session `json:"session"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Data.Session.Status != models.SessionStatusRescheduled {
		t.Fatalf("expected rescheduled status, got %q", body.Data.Session.Status)
	}
}

func TestMapSessionErrorDefaultsToInternalServerError(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapSessionError(c, errors.New("boom"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestMapSessionErrorReturnsTutorNotFound(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapSessionError(c, services.ErrTutorNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
