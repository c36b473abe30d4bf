package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/service"
	"github.com/noah-isme/gema-tutor-api/internal/utils"
)

// TemplateHandler manages assignment templates.
type TemplateHandler struct {
	service service.TemplateService
	logger  zerolog.Logger
}

// NewTemplateHandler builds a template handler instance.
func NewTemplateHandler(service service.TemplateService, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		logger:  logger.With().Str("component", "template_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The group must be
// restricted to teachers.
func (h *TemplateHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/:id/generate", h.generate)
}

func (h *TemplateHandler) list(c *fiber.Ctx) error {
	templates, err := h.service.List(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "templates retrieved", templates)
}

func (h *TemplateHandler) create(c *fiber.Ctx) error {
	var payload dto.TemplateCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	template, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "template created", template)
}

func (h *TemplateHandler) generate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.GenerateAssignment(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment generated", assignment)
}
