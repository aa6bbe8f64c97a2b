package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fahrezy/interview-pilot/internal/config"
	"github.com/fahrezy/interview-pilot/internal/dto"
	"github.com/fahrezy/interview-pilot/internal/middleware"
	"github.com/fahrezy/interview-pilot/internal/usecase"
	"github.com/fahrezy/interview-pilot/internal/util"
)

type AdminHandler struct {
	catalog *usecase.CatalogUsecase
}

func NewAdminHandler(catalog *usecase.CatalogUsecase) *AdminHandler {
	return &AdminHandler{catalog: catalog}
}

func (h *AdminHandler) RegisterRoutes(app *fiber.App) {
	// Login stays outside the guard, everything else under /admin needs
	// the session cookie.
	app.Post("/admin/login", middleware.RateLimiter(10, time.Minute), h.Login)

	admin := app.Group("/admin", middleware.AdminAuth(config.LoadAdminConfig().Secret))
	admin.Post("/logout", h.Logout)
	admin.Post("/interviews", h.Create)
	admin.Put("/interviews/:id", h.Update)
	admin.Delete("/interviews/:id", h.Delete)
	admin.Post("/interviews/seed", h.Seed)
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	adminConfig := config.LoadAdminConfig()
	if body.Email == "" || body.Password == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Missing credentials",
		})
	}
	if body.Email != adminConfig.ID || body.Password != adminConfig.Pass {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnauthorized,
			Message: "Invalid admin credentials",
		})
	}

	token, err := middleware.SignAdminToken(adminConfig.Secret, time.Now())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create admin session",
		}, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    token,
		Expires:  time.Now().Add(middleware.AdminTokenTTL),
		HTTPOnly: true,
		Secure:   config.LoadAppConfig().Env == "production",
		SameSite: "Lax",
		Path:     "/",
	})
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Signed in successfully",
	})
}

func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Signed out",
	})
}

func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var body dto.CreateInterviewRequest
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	interview, err := h.catalog.Create(c.Context(), body)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInterview) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnprocessableEntity,
				Message: err.Error(),
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create interview",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Interview created",
		Data:    usecase.NewInterviewDTO(interview),
	})
}

func (h *AdminHandler) Update(c *fiber.Ctx) error {
	var body dto.UpdateInterviewRequest
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	interview, err := h.catalog.Update(c.Context(), c.Params("id"), body)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInterviewNotFound):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "interview not found",
			})
		case errors.Is(err, usecase.ErrInvalidInterview):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnprocessableEntity,
				Message: err.Error(),
			})
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to update interview",
			}, err)
		}
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Interview updated",
		Data:    usecase.NewInterviewDTO(interview),
	})
}

func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.Params("id")); err != nil {
		if errors.Is(err, usecase.ErrInterviewNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "interview not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to delete interview",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Interview deleted",
	})
}

func (h *AdminHandler) Seed(c *fiber.Ctx) error {
	if err := h.catalog.Seed(c.Context()); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to seed interviews",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Interviews seeded successfully",
	})
}
