package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
	"github.com/sabirama/tutorial-hub-sub000/pkg/utils"
)

type AdminHandler struct {
	accountRepo *repository.AccountRepository
	tokenRepo   *repository.TokenRepository
}

func NewAdminHandler(accountRepo *repository.AccountRepository, tokenRepo *repository.TokenRepository) *AdminHandler {
	return &AdminHandler{accountRepo: accountRepo, tokenRepo: tokenRepo}
}

func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	page, limit := parsePageAndLimit(c.Query("page"), c.Query("limit"))

	role := c.Query("role")
	switch role {
	case "", models.RoleParent, models.RoleTutor, models.RoleAdmin:
	default:
		return respondError(c, fiber.StatusBadRequest, "Unknown role filter")
	}

	status := c.Query("status")
	switch status {
	case "", models.AccountStatusPending, models.AccountStatusActive, models.AccountStatusInactive:
	default:
		return respondError(c, fiber.StatusBadRequest, "Unknown status filter")
	}

	accounts, total, err := h.accountRepo.List(c.Context(), repository.AccountListFilter{
		Role:   role,
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch accounts")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"accounts":   accounts,
		"pagination": buildPaginationMeta(page, limit, total),
	}, "OK")
}

type updateAccountStatusRequest struct {
	Status string `json:"status"`
}

// UpdateAccountStatus activates or deactivates an account. Deactivation also
// revokes every live session, so the account drops out immediately.
func (h *AdminHandler) UpdateAccountStatus(c *fiber.Ctx) error {
	accountID, err := c.ParamsInt("id")
	if err != nil || accountID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid account id")
	}

	var req updateAccountStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Status != models.AccountStatusActive && req.Status != models.AccountStatusInactive {
		return respondError(c, fiber.StatusBadRequest, "Status must be active or inactive")
	}

	account, err := h.accountRepo.UpdateStatus(c.Context(), int64(accountID), req.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Account not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update account")
	}

	if req.Status == models.AccountStatusInactive {
		if err := h.tokenRepo.RevokeAllForAccount(c.Context(), account.ID); err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to revoke sessions")
		}
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"account": accountPayload(account)}, "Account updated")
}

type verifyAccountRequest struct {
	Verified *bool `json:"verified"`
}

func (h *AdminHandler) VerifyAccount(c *fiber.Ctx) error {
	accountID, err := c.ParamsInt("id")
	if err != nil || accountID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid account id")
	}

	var req verifyAccountRequest
	if err := c.BodyParser(&req); err != nil || req.Verified == nil {
		return respondError(c, fiber.StatusBadRequest, "verified is required")
	}

	account, err := h.accountRepo.SetVerified(c.Context(), int64(accountID), *req.Verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Account not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update account")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"account": accountPayload(account)}, "Account updated")
}

// ResetAccountPassword generates a temporary password, stores its hash and
// revokes the account's sessions. The plaintext is returned once for the
// admin to hand over out of band.
func (h *AdminHandler) ResetAccountPassword(c *fiber.Ctx) error {
	accountID, err := c.ParamsInt("id")
	if err != nil || accountID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid account id")
	}

	if _, err := h.accountRepo.GetByID(c.Context(), int64(accountID)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Account not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch account")
	}

	password, err := utils.GeneratePassword(12)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate password")
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	if err := h.accountRepo.UpdatePassword(c.Context(), int64(accountID), hashed); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to update password")
	}
	if err := h.tokenRepo.RevokeAllForAccount(c.Context(), int64(accountID)); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to revoke sessions")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"temporary_password": password}, "Password reset")
}
