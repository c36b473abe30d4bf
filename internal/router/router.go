package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-tutor-api/internal/config"
	"github.com/noah-isme/gema-tutor-api/internal/handler"
	"github.com/noah-isme/gema-tutor-api/internal/middleware"
	"github.com/noah-isme/gema-tutor-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler       *handler.AssignmentHandler
	TemplateHandler         *handler.TemplateHandler
	AttemptHandler          *handler.AttemptHandler
	SubmissionHandler       *handler.SubmissionHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	TrackingHandler         *handler.TrackingHandler
	SeedHandler             *handler.SeedHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	v2 := app.Group("/api/v2", jwtMiddleware)

	// Assignments: teacher authoring and student attempts share the prefix
	// and guard each route by role.
	assignments := v2.Group("/assignments")
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(assignments)
	}
	if deps.AttemptHandler != nil {
		deps.AttemptHandler.Register(assignments)
	}

	teacherOnly := middleware.RequireRole(middleware.AuthRoleTeacher)

	if deps.TemplateHandler != nil {
		deps.TemplateHandler.Register(v2.Group("/templates", teacherOnly))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(v2.Group("/submissions"))
	}

	if deps.StudentDashboardHandler != nil {
		deps.StudentDashboardHandler.Register(v2.Group("/student"))
	}

	if deps.TrackingHandler != nil {
		deps.TrackingHandler.Register(v2.Group("/tracking", teacherOnly))
	}
}
