package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fahrezy/interview-pilot/internal/dto"
	"github.com/fahrezy/interview-pilot/internal/middleware"
	"github.com/fahrezy/interview-pilot/internal/usecase"
	"github.com/fahrezy/interview-pilot/internal/util"
)

type SessionHandler struct {
	sessions *usecase.SessionUsecase
}

func NewSessionHandler(sessions *usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) RegisterRoutes(app *fiber.App) {
	group := app.Group("/", middleware.UserAuth())
	group.Post("/interviews/:id/sessions", middleware.RateLimiter(5, time.Minute), h.Start)
	group.Post("/interviews/:id/sessions/end", h.End)
	group.Post("/interviews/:id/sessions/mute", h.Mute)
	group.Get("/sessions", h.List)
	group.Get("/sessions/:interviewId", h.Get)
	group.Post("/sessions/:interviewId/feedback", middleware.RateLimiter(10, time.Minute), h.GenerateFeedback)
	group.Post("/sessions/:interviewId/feedback/save", h.SaveFeedback)
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func (h *SessionHandler) Start(c *fiber.Ctx) error {
	session, err := h.sessions.StartSession(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInterviewNotFound):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "interview not found",
			})
		case errors.Is(err, usecase.ErrCallAlreadyActive):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "another interview call is already in progress",
			})
		case errors.Is(err, usecase.ErrVoiceStart):
			// Session row is already in "started"; the client may retry.
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadGateway,
				Message: "failed to start AI interviewer, please try again",
			}, err)
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to start interview session",
			}, err)
		}
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Interview session started",
		Data:    dto.NewSessionDTO(session),
	})
}

func (h *SessionHandler) End(c *fiber.Ctx) error {
	session, err := h.sessions.EndSession(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoActiveCall):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "no active call for this interview",
			})
		case errors.Is(err, usecase.ErrSessionNotFound):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "session not found",
			})
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to end interview session",
			}, err)
		}
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Interview session completed",
		Data:    dto.NewSessionDTO(session),
	})
}

func (h *SessionHandler) Mute(c *fiber.Ctx) error {
	var body struct {
		Muted bool `json:"muted"`
	}
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if err := h.sessions.SetMuted(userID(c), body.Muted); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusConflict,
			Message: "no active call",
		})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Mute state updated",
	})
}

func (h *SessionHandler) List(c *fiber.Ctx) error {
	sessions, err := h.sessions.ListSessions(userID(c))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list sessions",
		}, err)
	}
	data := make([]dto.SessionDTO, 0, len(sessions))
	for i := range sessions {
		data = append(data, dto.NewSessionDTO(&sessions[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get sessions",
		Data:    data,
	})
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, err := h.sessions.GetSession(userID(c), c.Params("interviewId"))
	if err != nil {
		if errors.Is(err, usecase.ErrSessionNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "session not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to get session",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get session",
		Data:    dto.NewSessionDTO(session),
	})
}

func (h *SessionHandler) GenerateFeedback(c *fiber.Ctx) error {
	result, saved, err := h.sessions.GenerateFeedback(c.Context(), userID(c), c.Params("interviewId"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSessionNotFound):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "session not found",
			})
		case errors.Is(err, usecase.ErrSessionNotCompleted):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "finish the interview before requesting feedback",
			})
		case errors.Is(err, usecase.ErrFeedbackGeneration):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadGateway,
				Message: "unable to generate feedback, please try again",
			}, err)
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to generate feedback",
			}, err)
		}
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success generate feedback",
		Data:    result,
		Meta:    fiber.Map{"saved": saved},
	})
}

func (h *SessionHandler) SaveFeedback(c *fiber.Ctx) error {
	var body dto.SaveFeedbackRequest
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	result := &usecase.FeedbackResult{
		Score:        body.Score,
		Feedback:     body.Feedback,
		GoodParts:    body.GoodParts,
		Improvements: body.Improvements,
		Motivation:   body.Motivation,
	}
	if err := h.sessions.SaveFeedback(c.Context(), userID(c), c.Params("interviewId"), result); err != nil {
		if errors.Is(err, usecase.ErrSessionNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "session not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "failed to save feedback",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Feedback saved successfully",
	})
}
