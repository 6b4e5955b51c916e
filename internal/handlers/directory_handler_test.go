package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

type stubDirectoryService struct {
	tutors     []models.TutorListing
	total      int
	getResult  *models.TutorListing
	getErr     error
	lastFilter repository.TutorListFilter
	lastLimit  int
}

func (s *stubDirectoryService) ListTutors(_ context.Context, filter repository.TutorListFilter) ([]models.TutorListing, int, error) {
	s.lastFilter = filter
	return s.tutors, s.total, nil
}

func (s *stubDirectoryService) GetTutor(_ context.Context, tutorID int64) (*models.TutorListing, error) {
	return s.getResult, s.getErr
}

func (s *stubDirectoryService) GetRecommendedTutors(_ context.Context, parentID int64, limit int) ([]models.TutorWithScore, error) {
	s.lastLimit = limit
	return nil, nil
}

func newDirectoryTestApp(service tutorDirectoryService) *fiber.App {
	handler := NewDirectoryHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", models.RoleParent)
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/tutors", handler.ListTutors)
	app.Get("/api/v1/tutors/recommended", handler.GetRecommendedTutors)
	app.Get("/api/v1/tutors/:id", handler.GetTutor)
	return app
}

func TestListTutorsForwardsFiltersAndPaginates(t *testing.T) {
	service := &stubDirectoryService{
		tutors: []models.TutorListing{{Verified: true}},
		total:  23,
	}
	app := newDirectoryTestApp(service)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/tutors?subject_id=3&min_rating=4&max_rate=50&location=lagos&search=ada&page=2&limit=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.SubjectID != 3 || service.lastFilter.MinRating != 4 || service.lastFilter.MaxRate != 50 {
		t.Fatalf("unexpected filter: %+v", service.lastFilter)
	}
	if service.lastFilter.Location != "lagos" || service.lastFilter.SearchName != "ada" {
		t.Fatalf("unexpected text filters: %+v", service.lastFilter)
	}
	if service.lastFilter.Offset != 10 || service.lastFilter.Limit != 10 {
		t.Fatalf("unexpected paging: offset %d limit %d", service.lastFilter.Offset, service.lastFilter.Limit)
	}

	var body struct {
		Data struct {
			Pagination models.PaginationMeta `json:"pagination"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Data.Pagination.Total != 23 || body.Data.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", body.Data.Pagination)
	}
}

func TestListTutorsRejectsMalformedRatingFilter(t *testing.T) {
	app := newDirectoryTestApp(&stubDirectoryService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors?min_rating=high", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetTutorReturnsNotFound(t *testing.T) {
	app := newDirectoryTestApp(&stubDirectoryService{getErr: pgx.ErrNoRows})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/999", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetRecommendedTutorsCapsLimit(t *testing.T) {
	service := &stubDirectoryService{}
	app := newDirectoryTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/recommended?limit=500", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastLimit != maxPageLimit {
		t.Fatalf("expected limit %d, got %d", maxPageLimit, service.lastLimit)
	}
}
