package handlers

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
	"github.com/sabirama/tutorial-hub-sub000/pkg/utils"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)

type authApplicationService interface {
	Register(ctx context.Context, role string, input services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, role, username, password string) (*services.AuthResult, error)
	RevokeSession(ctx context.Context, tokenID string) error
	AccountDetail(ctx context.Context, accountID int64) (*services.AccountDetail, error)
}

type AuthHandler struct {
	service authApplicationService
}

func NewAuthHandler(service authApplicationService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	FullName      string `json:"full_name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterParent and RegisterTutor are the role-fixed faces of register.
func (h *AuthHandler) RegisterParent(c *fiber.Ctx) error { return h.register(c, models.RoleParent) }
func (h *AuthHandler) RegisterTutor(c *fiber.Ctx) error  { return h.register(c, models.RoleTutor) }

func (h *AuthHandler) LoginParent(c *fiber.Ctx) error { return h.login(c, models.RoleParent) }
func (h *AuthHandler) LoginTutor(c *fiber.Ctx) error  { return h.login(c, models.RoleTutor) }
func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error  { return h.login(c, models.RoleAdmin) }

func (h *AuthHandler) register(c *fiber.Ctx, role string) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid email format")
	}
	req.Email = strings.ToLower(parsedEmail.Address)
	req.Username = strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(req.Username) {
		return respondError(c, fiber.StatusBadRequest, "Username must be 3-32 letters, digits, dots or underscores")
	}
	if len(req.Password) < 8 {
		return respondError(c, fiber.StatusBadRequest, "Password must be at least 8 characters")
	}
	if utils.PasswordStrength(req.Password) < 2 {
		return respondError(c, fiber.StatusBadRequest, "Password is too weak")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return respondError(c, fiber.StatusBadRequest, "full_name is required")
	}

	result, err := h.service.Register(c.Context(), role, services.RegisterInput{
		Email:         req.Email,
		Username:      req.Username,
		Password:      req.Password,
		FullName:      fullName,
		ContactNumber: nilIfEmpty(strings.TrimSpace(req.ContactNumber)),
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{
		roleKey(role): accountPayload(result.Account),
		"token":       result.Token,
	}, "Registration successful")
}

func (h *AuthHandler) login(c *fiber.Ctx, role string) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return respondError(c, fiber.StatusBadRequest, "Username and password are required")
	}

	result, err := h.service.Login(c.Context(), role, req.Username, req.Password)
	if err != nil {
		return mapAuthError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		roleKey(result.Account.Role): accountPayload(result.Account),
		"token":                      result.Token,
	}, "Login successful")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	tokenID, ok := c.Locals("token_id").(string)
	if !ok || tokenID == "" {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	if err := h.service.RevokeSession(c.Context(), tokenID); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to revoke session")
	}

	return respondData(c, fiber.StatusOK, nil, "Logged out")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	detail, err := h.service.AccountDetail(c.Context(), accountID)
	if err != nil {
		return mapAuthError(c, err)
	}

	payload := fiber.Map{"account": accountPayload(detail.Account)}
	if detail.ParentProfile != nil {
		payload["profile"] = detail.ParentProfile
	}
	if detail.TutorProfile != nil {
		payload["profile"] = detail.TutorProfile
	}

	return respondData(c, fiber.StatusOK, payload, "OK")
}

func mapAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return respondError(c, fiber.StatusBadRequest, "Email already exists")
	case errors.Is(err, services.ErrUsernameTaken):
		return respondError(c, fiber.StatusBadRequest, "Username already exists")
	case errors.Is(err, services.ErrAccountExists):
		return respondError(c, fiber.StatusBadRequest, "Email or username already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		return respondError(c, fiber.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrAccountInactive):
		return respondError(c, fiber.StatusForbidden, "Account is deactivated")
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Account not found")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Authentication failed")
	}
}

func accountPayload(account *models.Account) fiber.Map {
	return fiber.Map{
		"id":       account.ID,
		"email":    account.Email,
		"username": account.Username,
		"role":     account.Role,
		"status":   account.Status,
		"verified": account.Verified,
	}
}

func roleKey(role string) string {
	switch role {
	case models.RoleParent:
		return "parent"
	case models.RoleTutor:
		return "tutor"
	default:
		return "account"
	}
}

func nilIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
