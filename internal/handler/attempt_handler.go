package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/middleware"
	"github.com/noah-isme/gema-tutor-api/internal/service"
	"github.com/noah-isme/gema-tutor-api/internal/utils"
)

// AttemptHandler lets students render and submit assignments.
type AttemptHandler struct {
	service     service.AttemptService
	submitGuard fiber.Handler
	logger      zerolog.Logger
}

// NewAttemptHandler builds an attempt handler. submitGuard, when non-nil, runs
// before every submission (typically a rate limiter).
func NewAttemptHandler(service service.AttemptService, submitGuard fiber.Handler, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service:     service,
		submitGuard: submitGuard,
		logger:      logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches the student routes to the assignments group.
func (h *AttemptHandler) Register(router fiber.Router) {
	student := middleware.AuthOptions{Roles: []string{middleware.AuthRoleStudent}}

	router.Post("/:id/attempts", middleware.WithAuth(h.start, student))

	submit := []fiber.Handler{}
	if h.submitGuard != nil {
		submit = append(submit, h.submitGuard)
	}
	submit = append(submit, middleware.WithAuth(h.submit, student))
	router.Post("/:id/attempts/submit", submit...)
}

func (h *AttemptHandler) start(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempt, err := h.service.Start(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", attempt)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitAttemptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission graded", submission)
}
