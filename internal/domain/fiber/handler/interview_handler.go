package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fahrezy/interview-pilot/internal/dto"
	"github.com/fahrezy/interview-pilot/internal/response"
	"github.com/fahrezy/interview-pilot/internal/usecase"
	"github.com/fahrezy/interview-pilot/internal/util"
)

type InterviewHandler struct {
	catalog *usecase.CatalogUsecase
}

func NewInterviewHandler(catalog *usecase.CatalogUsecase) *InterviewHandler {
	return &InterviewHandler{catalog: catalog}
}

func (h *InterviewHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/interviews", h.List)
	app.Get("/interviews/:id", h.Get)
	app.Get("/interviews/:id/related", h.Related)
	app.Get("/stats", h.Stats)
}

func (h *InterviewHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	interviews, total, err := h.catalog.List(page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list interviews",
		}, err)
	}

	data := make([]dto.InterviewDTO, 0, len(interviews))
	for i := range interviews {
		data = append(data, usecase.NewInterviewDTO(&interviews[i]))
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get interviews",
		Data:    data,
		Pagination: &response.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
			TotalItems: total,
			HasMore:    int64(page) < totalPages,
			From:       (page-1)*pageSize + 1,
			To:         (page-1)*pageSize + len(data),
		},
	})
}

func (h *InterviewHandler) Get(c *fiber.Ctx) error {
	interview, err := h.catalog.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrInterviewNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "interview not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to get interview",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get interview",
		Data:    usecase.NewInterviewDTO(interview),
	})
}

func (h *InterviewHandler) Related(c *fiber.Ctx) error {
	interviews, err := h.catalog.Related(c.Params("id"), c.QueryInt("top_k", 5))
	if err != nil {
		if errors.Is(err, usecase.ErrInterviewNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "interview not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to find related interviews",
		}, err)
	}

	data := make([]dto.InterviewDTO, 0, len(interviews))
	for i := range interviews {
		data = append(data, usecase.NewInterviewDTO(&interviews[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get related interviews",
		Data:    data,
	})
}

func (h *InterviewHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.catalog.Stats()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to get catalog stats",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get catalog stats",
		Data:    stats,
	})
}
