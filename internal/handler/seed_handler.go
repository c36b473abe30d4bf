package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/service"
	"github.com/noah-isme/gema-tutor-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for provisioning rosters.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/roster", h.roster)
}

func (h *SeedHandler) roster(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload dto.RosterSeedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.SeedRoster(c.UserContext(), token, payload)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "roster seeded", result)
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	default:
		return respondError(c, h.logger, err)
	}
}
