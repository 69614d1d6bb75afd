package handlers

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"marketplace-system/middleware"
	"marketplace-system/services"
	"marketplace-system/store"
	"marketplace-system/utils"
)

// SetupPostRoutes wires the product listing views and the buy-now action.
func SetupPostRoutes(app *fiber.App, s store.Store, posts *services.PostService, orders *services.OrderService, jwtSecret string) {
	app.Get("/posts", func(c *fiber.Ctx) error {
		list, err := posts.List(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load posts"})
		}
		return c.JSON(fiber.Map{"posts": list})
	})

	app.Get("/posts/:id", func(c *fiber.Ctx) error {
		post, err := posts.Get(c.Context(), c.Params("id"))
		if errors.Is(err, services.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load post"})
		}
		return c.JSON(post)
	})

	secured := app.Group("/posts", middleware.SessionMiddleware(jwtSecret, s))

	secured.Post("/", func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)

		in := services.PostInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Price:       c.FormValue("price"),
			Location:    c.FormValue("location"),
			Phone:       c.FormValue("phone"),
		}

		if imageFile, err := c.FormFile("image"); err == nil && imageFile.Size > 0 {
			ext := filepath.Ext(imageFile.Filename)
			if ext == "" {
				ext = ".jpg"
			}
			imageURL, err := utils.UploadImage(imageFile, "posts/"+uuid.NewString()+ext)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
			}
			in.ImageURL = imageURL
		}

		id, err := posts.Create(c.Context(), sess.UserID, in)
		if errors.Is(err, services.ErrMissingTitle) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and description are required"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create post"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post_id": id})
	})

	secured.Post("/:id/buy", func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)

		orderID, err := orders.Create(c.Context(), sess.UserID, c.Params("id"))
		if errors.Is(err, services.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit order"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"order_id": orderID,
			"message":  "Your order has been submitted. The administration will contact you soon.",
		})
	})
}
