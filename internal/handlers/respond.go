package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// The API's response envelope is fixed: {success, data, message} on success
// and {success, error, message} on failure.

func respondData(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"message": message,
	})
}

// authAccountID reads the account id the auth middleware stored on the
// request context.
func authAccountID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}

func authRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
