package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

type stubRatingService struct {
	submitResult *models.Rating
	submitErr    error
	ratings      []models.Rating
	lastActorID  int64
	lastRole     string
	lastInput    services.SubmitRatingInput
	lastTargetID int64
}

func (s *stubRatingService) SubmitRating(_ context.Context, actorID int64, role string, input services.SubmitRatingInput) (*models.Rating, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastInput = input
	return s.submitResult, s.submitErr
}

func (s *stubRatingService) ListTutorRatings(_ context.Context, tutorID int64) ([]models.Rating, error) {
	s.lastTargetID = tutorID
	return s.ratings, nil
}

func (s *stubRatingService) ListParentRatings(_ context.Context, parentID int64) ([]models.Rating, error) {
	s.lastTargetID = parentID
	return s.ratings, nil
}

func newRatingTestApp(service ratingApplicationService, role, userID string) *fiber.App {
	handler := NewRatingHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/ratings", handler.SubmitRating)
	app.Get("/api/v1/tutors/:id/ratings", handler.ListTutorRatings)
	app.Get("/api/v1/parents/:id/ratings", handler.ListParentRatings)
	return app
}

func TestSubmitRatingForwardsParentToTutor(t *testing.T) {
	service := &stubRatingService{
		submitResult: &models.Rating{ID: 3, ParentID: 42, TutorID: 7, Direction: models.RatingParentToTutor, Score: 5},
	}
	app := newRatingTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings", strings.NewReader(`{"tutor_id": 7, "score": 5, "comment": "great"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastInput.SubjectAccountID != 7 || service.lastInput.Score != 5 {
		t.Fatalf("unexpected input: %+v", service.lastInput)
	}
	if service.lastRole != models.RoleParent {
		t.Fatalf("expected parent role, got %q", service.lastRole)
	}
}

func TestSubmitRatingAcceptsParentIDFromTutor(t *testing.T) {
	service := &stubRatingService{
		submitResult: &models.Rating{ID: 4, ParentID: 42, TutorID: 7, Direction: models.RatingTutorToParent, Score: 4},
	}
	app := newRatingTestApp(service, models.RoleTutor, "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings", strings.NewReader(`{"parent_id": 42, "score": 4}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastInput.SubjectAccountID != 42 {
		t.Fatalf("expected subject account 42, got %d", service.lastInput.SubjectAccountID)
	}
}

func TestSubmitRatingRejectsMissingTarget(t *testing.T) {
	service := &stubRatingService{}
	app := newRatingTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings", strings.NewReader(`{"score": 5}`))
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

func TestSubmitRatingMapsInvalidScore(t *testing.T) {
	service := &stubRatingService{submitErr: services.ErrInvalidInput}
	app := newRatingTestApp(service, models.RoleParent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings", strings.NewReader(`{"tutor_id": 7, "score": 11}`))
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

func TestListTutorRatingsForwardsID(t *testing.T) {
	service := &stubRatingService{ratings: []models.Rating{{ID: 1, TutorID: 7, Score: 5}}}
	app := newRatingTestApp(service, models.RoleParent, "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/7/ratings", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTargetID != 7 {
		t.Fatalf("expected tutor id 7, got %d", service.lastTargetID)
	}
}
