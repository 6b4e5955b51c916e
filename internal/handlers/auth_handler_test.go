package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

type stubAuthService struct {
	registerResult *services.AuthResult
	registerErr    error
	loginResult    *services.AuthResult
	loginErr       error
	detail         *services.AccountDetail
	detailErr      error
	revokeErr      error

	registerCalls int
	lastRole      string
	lastRegister  services.RegisterInput
	lastUsername  string
	lastPassword  string
	revokedToken  string
	lastAccountID int64
}

func (s *stubAuthService) Register(_ context.Context, role string, input services.RegisterInput) (*services.AuthResult, error) {
	s.registerCalls++
	s.lastRole = role
	s.lastRegister = input
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, role, username, password string) (*services.AuthResult, error) {
	s.lastRole = role
	s.lastUsername = username
	s.lastPassword = password
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) RevokeSession(_ context.Context, tokenID string) error {
	s.revokedToken = tokenID
	return s.revokeErr
}

func (s *stubAuthService) AccountDetail(_ context.Context, accountID int64) (*services.AccountDetail, error) {
	s.lastAccountID = accountID
	return s.detail, s.detailErr
}

func newAuthTestApp(service authApplicationService) *fiber.App {
	handler := NewAuthHandler(service)

	app := fiber.New()
	app.Post("/api/parents/register", handler.RegisterParent)
	app.Post("/api/tutors/register", handler.RegisterTutor)
	app.Post("/api/parents/login", handler.LoginParent)
	app.Post("/api/tutors/login", handler.LoginTutor)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestRegisterParentReturnsAccountAndToken(t *testing.T) {
	service := &stubAuthService{
		registerResult: &services.AuthResult{
			Account: &models.Account{ID: 42, Email: "jane@example.com", Username: "jane.d", Role: models.RoleParent, Status: models.AccountStatusPending},
			Token:   "jwt-token",
		},
	}
	app := newAuthTestApp(service)

	resp := postJSON(t, app, "/api/parents/register", `{"full_name": "Jane Doe", "email": "Jane@Example.com", "username": "jane.d", "password": "Str0ngPass"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastRole != models.RoleParent {
		t.Fatalf("expected parent role, got %q", service.lastRole)
	}
	if service.lastRegister.Email != "jane@example.com" {
		t.Fatalf("expected lowercased email, got %q", service.lastRegister.Email)
	}

	var body struct {
		Data struct {
			Parent struct {
				ID int64 `json:"id"`
			} `json:"parent"`
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Parent.ID != 42 || body.Data.Token != "jwt-token" {
		t.Fatalf("unexpected payload: %+v", body.Data)
	}
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	service := &stubAuthService{registerErr: services.ErrEmailTaken}
	app := newAuthTestApp(service)

	resp := postJSON(t, app, "/api/parents/register", `{"full_name": "Jane Doe", "email": "jane@example.com", "username": "jane.d", "password": "Str0ngPass"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "Email already exists") {
		t.Fatalf("expected duplicate-email message, got %s", body)
	}
}

func TestRegisterDuplicateUsernameRejected(t *testing.T) {
	service := &stubAuthService{registerErr: services.ErrUsernameTaken}
	app := newAuthTestApp(service)

	resp := postJSON(t, app, "/api/tutors/register", `{"full_name": "John Doe", "email": "john@example.com", "username": "john.d", "password": "Str0ngPass"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "Username already exists") {
		t.Fatalf("expected duplicate-username message, got %s", body)
	}
}

func TestRegisterWeakPasswordRejectedBeforeService(t *testing.T) {
	service := &stubAuthService{}
	app := newAuthTestApp(service)

	resp := postJSON(t, app, "/api/parents/register", `{"full_name": "Jane Doe", "email": "jane@example.com", "username": "jane.d", "password": "aaaaaaaa"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.registerCalls != 0 {
		t.Fatalf("expected no service call, got %d", service.registerCalls)
	}
}

func TestRegisterInvalidEmailRejectedBeforeService(t *testing.T) {
	service := &stubAuthService{}
	app := newAuthTestApp(service)

	resp := postJSON(t, app, "/api/parents/register", `{"full_name": "Jane Doe", "email": "not-an-email", "username": "jane.d", "password": "Str0ngPass"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.registerCalls != 0 {
		t.Fatalf("expected no service call, got %d", service.registerCalls)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	service := &stubAuthService{loginErr: services.ErrInvalidCredentials}
	app := newAuthTestApp(service)

	wrongUsername := postJSON(t, app, "/api/parents/login", `{"username": "nobody", "password": "Str0ngPass"}`)
	defer wrongUsername.Body.Close()
	wrongPassword := postJSON(t, app, "/api/parents/login", `{"username": "jane.d", "password": "wrong-pass"}`)
	defer wrongPassword.Body.Close()

	if wrongUsername.StatusCode != http.StatusUnauthorized || wrongPassword.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongUsername.StatusCode, wrongPassword.StatusCode)
	}

	firstBody, err := io.ReadAll(wrongUsername.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	secondBody, err := io.ReadAll(wrongPassword.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(firstBody) != string(secondBody) {
		t.Fatalf("login failures differ:\n%s\n%s", firstBody, secondBody)
	}
}

func TestLoginInactiveAccountForbidden(t *testing.T) {
	service := &stubAuthService{loginErr: services.ErrAccountInactive}
	app := newAuthTestApp(service)

	resp := postJSON(t, app, "/api/parents/login", `{"username": "jane.d", "password": "Str0ngPass"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestLoginReturnsAccountAndToken(t *testing.T) {
	service := &stubAuthService{
		loginResult: &services.AuthResult{
			Account: &models.Account{ID: 7, Username: "tutor.one", Role: models.RoleTutor, Status: models.AccountStatusActive},
			Token:   "jwt-token",
		},
	}
	app := newAuthTestApp(service)

	resp := postJSON(t, app, "/api/tutors/login", `{"username": "tutor.one", "password": "Str0ngPass"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUsername != "tutor.one" || service.lastRole != models.RoleTutor {
		t.Fatalf("unexpected login call: %q as %q", service.lastUsername, service.lastRole)
	}

	var body struct {
		Data struct {
			Tutor struct {
				ID int64 `json:"id"`
			} `json:"tutor"`
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Tutor.ID != 7 || body.Data.Token != "jwt-token" {
		t.Fatalf("unexpected payload: %+v", body.Data)
	}
}

func TestLogoutRevokesCurrentSession(t *testing.T) {
	service := &stubAuthService{}
	handler := NewAuthHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("token_id", "session-jti")
		return c.Next()
	})
	app.Post("/api/v1/auth/logout", handler.Logout)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.revokedToken != "session-jti" {
		t.Fatalf("expected session-jti revoked, got %q", service.revokedToken)
	}
}

func TestMeReturnsAccountWithProfile(t *testing.T) {
	fullName := "Jane Doe"
	service := &stubAuthService{
		detail: &services.AccountDetail{
			Account:       &models.Account{ID: 42, Username: "jane.d", Role: models.RoleParent},
			ParentProfile: &models.ParentProfile{ID: 1, AccountID: 42, FullName: &fullName},
		},
	}
	handler := NewAuthHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/auth/me", handler.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastAccountID != 42 {
		t.Fatalf("expected account 42, got %d", service.lastAccountID)
	}

	var body struct {
		Data struct {
			Profile *models.ParentProfile `json:"profile"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Profile == nil || body.Data.Profile.AccountID != 42 {
		t.Fatalf("expected parent profile in payload, got %+v", body.Data.Profile)
	}
}
