package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"marketplace-system/auth"
	"marketplace-system/services"
	"marketplace-system/utils"
)

// SetupAuthRoutes wires registration, login and logout.
func SetupAuthRoutes(app *fiber.App, registration *services.RegistrationService, provider auth.Provider, jwtSecret string) {
	app.Post("/auth/register", func(c *fiber.Ctx) error {
		var req struct {
			Name         string `json:"name"`
			Phone        string `json:"phone"`
			Email        string `json:"email"`
			Password     string `json:"password"`
			Address      string `json:"address"`
			ReferralCode string `json:"referral_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		userID, err := registration.Register(c.Context(), services.RegisterInput{
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			Address:      req.Address,
			Password:     req.Password,
			ReferralCode: req.ReferralCode,
		})
		if errors.Is(err, services.ErrMissingFields) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please fill in all required fields"})
		}
		if err != nil {
			return authFailure(c, err)
		}

		token, err := utils.GenerateSessionToken(userID, jwtSecret)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user_id": userID,
			"token":   token,
		})
	})

	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Email == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please fill in all fields"})
		}

		ident, err := provider.Authenticate(c.Context(), req.Email, req.Password)
		if err != nil {
			return authFailure(c, err)
		}

		token, err := utils.GenerateSessionToken(ident.UID, jwtSecret)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
		}
		return c.JSON(fiber.Map{
			"user_id": ident.UID,
			"token":   token,
		})
	})

	// Sessions are bearer tokens; logout is the client discarding its copy.
	app.Post("/auth/logout", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Signed out"})
	})
}

// authFailure maps a provider error onto a status code and its fixed
// user-facing message.
func authFailure(c *fiber.Ctx, err error) error {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": auth.NewError(auth.CodeUnknown).Message(),
		})
	}

	status := fiber.StatusBadRequest
	switch authErr.Code {
	case auth.CodeUserNotFound, auth.CodeWrongPassword:
		status = fiber.StatusUnauthorized
	case auth.CodeUserDisabled:
		status = fiber.StatusForbidden
	case auth.CodeEmailAlreadyInUse:
		status = fiber.StatusConflict
	case auth.CodeUnknown:
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{
		"error": authErr.Message(),
		"code":  authErr.Code,
	})
}
