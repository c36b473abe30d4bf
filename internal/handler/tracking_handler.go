package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/service"
	"github.com/noah-isme/gema-tutor-api/internal/utils"
)

// TrackingHandler serves the teacher's class progress matrix.
type TrackingHandler struct {
	service service.TrackingService
	logger  zerolog.Logger
}

// NewTrackingHandler builds a tracking handler instance.
func NewTrackingHandler(service service.TrackingService, logger zerolog.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  logger.With().Str("component", "tracking_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The group must be
// restricted to teachers.
func (h *TrackingHandler) Register(router fiber.Router) {
	router.Get("", h.track)
}

func (h *TrackingHandler) track(c *fiber.Ctx) error {
	tracking, err := h.service.Track(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tracking retrieved", tracking)
}
