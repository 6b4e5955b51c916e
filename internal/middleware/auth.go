package middleware

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/pkg/utils"
)

// TokenStore is the session-store lookup the auth middleware checks on every
// request, so a signed token stops working the moment it is revoked.
type TokenStore interface {
	GetByTokenID(ctx context.Context, tokenID string) (*models.AuthToken, error)
}

// AppKeyRequired gates the whole API behind the deployment's shared key. It
// identifies the client application, not a user.
func AppKeyRequired(appKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("App-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(appKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid app key",
				"message": "Invalid app key",
			})
		}
		return c.Next()
	}
}

func AuthRequired(secret string, tokens TokenStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthorized(c, "Invalid authorization header format")
		}

		claims, err := utils.ValidateToken(parts[1], secret)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		stored, err := tokens.GetByTokenID(c.Context(), claims.ID)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}
		if stored.RevokedAt != nil || time.Now().After(stored.ExpiresAt) {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("token_id", claims.ID)

		return c.Next()
	}
}

// RoleRequired runs after AuthRequired and narrows a route to the given roles.
func RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return unauthorized(c, "Invalid token")
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Forbidden",
			"message": "Forbidden",
		})
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"message": message,
	})
}
