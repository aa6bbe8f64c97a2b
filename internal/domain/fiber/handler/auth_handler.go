package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fahrezy/interview-pilot/internal/middleware"
	"github.com/fahrezy/interview-pilot/internal/model"
	"github.com/fahrezy/interview-pilot/internal/repository"
	"github.com/fahrezy/interview-pilot/internal/util"
)

type AuthHandler struct {
	users *repository.UserRepository
}

func NewAuthHandler(users *repository.UserRepository) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/auth/sync", middleware.UserAuth(), h.Sync)
}

// Sync mirrors the auth provider's user record on first sign-in. Existing
// rows are left untouched, so the call is safe to repeat.
func (h *AuthHandler) Sync(c *fiber.Ctx) error {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	user := &model.User{
		ID:        userID(c),
		Name:      body.Name,
		Email:     body.Email,
		CreatedAt: time.Now(),
	}
	if err := h.users.SyncUser(user); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to sync user",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "User synced successfully",
	})
}
