package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/middleware"
	"github.com/noah-isme/gema-tutor-api/internal/service"
	"github.com/noah-isme/gema-tutor-api/internal/utils"
)

// StudentDashboardHandler exposes dashboard endpoints for students.
type StudentDashboardHandler struct {
	service service.StudentDashboardService
	logger  zerolog.Logger
}

// NewStudentDashboardHandler constructs a dashboard handler.
func NewStudentDashboardHandler(service service.StudentDashboardService, logger zerolog.Logger) *StudentDashboardHandler {
	return &StudentDashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "student_dashboard_handler").Logger(),
	}
}

// Register attaches the routes to the student group.
func (h *StudentDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", middleware.WithAuth(h.getDashboard, middleware.AuthOptions{Roles: []string{middleware.AuthRoleStudent}}))
}

func (h *StudentDashboardHandler) getDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.GetDashboard(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if dashboard.CacheHit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}

	return utils.SendSuccess(c, "student dashboard retrieved", dashboard)
}
