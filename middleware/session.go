package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"marketplace-system/models"
	"marketplace-system/store"
	"marketplace-system/utils"
)

// SessionMiddleware validates the Bearer session token and attaches an
// explicit models.Session to the request context. The user record is read
// per request, so an admin grant or revoke takes effect on the next call.
func SessionMiddleware(secret string, s store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid Authorization header",
			})
		}

		claims, err := utils.ParseSessionToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		doc, err := s.Get(c.Context(), models.UserPath(claims.UserID))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unknown user",
			})
		}
		var rec models.UserRecord
		if err := store.Decode(doc, &rec); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load user record",
			})
		}

		c.Locals("session", models.Session{
			UserID:  claims.UserID,
			Name:    rec.Name,
			IsAdmin: rec.IsAdmin,
		})
		return c.Next()
	}
}

// SessionFromCtx returns the session attached by SessionMiddleware.
func SessionFromCtx(c *fiber.Ctx) models.Session {
	sess, _ := c.Locals("session").(models.Session)
	return sess
}
