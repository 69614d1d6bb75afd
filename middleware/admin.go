package middleware

import (
	"github.com/gofiber/fiber/v2"

	"marketplace-system/models"
)

// AdminOnlyMiddleware rejects requests whose session lacks the admin flag.
// Must run after SessionMiddleware.
func AdminOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := c.Locals("session").(models.Session)
		if !ok || sess.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		if !sess.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}
