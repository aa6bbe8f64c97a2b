package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fahrezy/interview-pilot/internal/middleware"
	"github.com/fahrezy/interview-pilot/internal/usecase"
	"github.com/fahrezy/interview-pilot/internal/util"
)

type RoadmapHandler struct {
	roadmap *usecase.RoadmapUsecase
}

func NewRoadmapHandler(roadmap *usecase.RoadmapUsecase) *RoadmapHandler {
	return &RoadmapHandler{roadmap: roadmap}
}

func (h *RoadmapHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/roadmap", middleware.UserAuth(), middleware.RateLimiter(5, time.Minute), h.Generate)
}

func (h *RoadmapHandler) Generate(c *fiber.Ctx) error {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	result, err := h.roadmap.Generate(c.Context(), body.Role)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadGateway,
			Message: "Failed to generate roadmap",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success generate roadmap",
		Data:    result,
	})
}
