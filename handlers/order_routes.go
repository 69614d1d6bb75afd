package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"marketplace-system/middleware"
	"marketplace-system/models"
	"marketplace-system/services"
	"marketplace-system/store"
)

// SetupOrderRoutes wires the admin order-approval workflow.
func SetupOrderRoutes(app *fiber.App, s store.Store, orders *services.OrderService, jwtSecret string) {
	admin := app.Group("/admin",
		middleware.SessionMiddleware(jwtSecret, s),
		middleware.AdminOnlyMiddleware(),
	)

	admin.Get("/orders", func(c *fiber.Ctx) error {
		grouped, err := orders.ListGrouped(c.Context(), c.Query("status", "all"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load orders"})
		}
		return c.JSON(fiber.Map{"posts": grouped})
	})

	admin.Get("/orders/:id", func(c *fiber.Ctx) error {
		detail, err := orders.Detail(c.Context(), c.Params("id"))
		if errors.Is(err, services.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load order"})
		}
		return c.JSON(detail)
	})

	admin.Post("/orders/:id/approve", func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		return orderTransition(c, orders.Approve(c.Context(), c.Params("id"), sess.UserID), "Order approved")
	})

	admin.Post("/orders/:id/reject", func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		return orderTransition(c, orders.Reject(c.Context(), c.Params("id"), sess.UserID), "Order rejected")
	})

	// Admin grant/revoke; the flag lives on the user record and takes
	// effect on the target's next request.
	admin.Post("/users/:id/admin", func(c *fiber.Ctx) error {
		var req struct {
			IsAdmin bool `json:"is_admin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		userID := c.Params("id")
		if _, err := s.Get(c.Context(), models.UserPath(userID)); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		if err := s.Update(c.Context(), models.UserPath(userID), store.Document{"isAdmin": req.IsAdmin}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
		}
		return c.JSON(fiber.Map{"user_id": userID, "is_admin": req.IsAdmin})
	})
}

func orderTransition(c *fiber.Ctx, err error, okMessage string) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	case errors.Is(err, services.ErrOrderFinalized):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Order has already been processed"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update order"})
	}
	return c.JSON(fiber.Map{"message": okMessage})
}
