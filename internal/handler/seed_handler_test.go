package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/handler"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
	"github.com/noah-isme/gema-tutor-api/internal/service"
)

func seedRequest(t *testing.T, app *fiber.App, token string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seed/roster", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Seed-Token", token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSeedHandlerRoster(t *testing.T) {
	a := newTestApp(t)
	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	seedService := service.NewSeedService(repository.NewRosterRepository(a.db), nil, validate, true, "secret", logger)
	app := fiber.New()
	handler.NewSeedHandler(seedService, logger).Register(app.Group("/api/v1/seed"))

	payload := dto.RosterSeedRequest{Classes: []dto.RosterClass{
		{ID: 30, Name: "Statistics", TeacherID: teacherID, Students: []dto.RosterStudent{{ID: outsiderID, Name: "Citra"}}},
	}}

	resp := seedRequest(t, app, "wrong", payload)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = seedRequest(t, app, "secret", map[string]interface{}{"classes": []interface{}{}})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = seedRequest(t, app, "secret", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var seeded envelope[dto.RosterSeedResponse]
	decodeResponse(t, resp, &seeded)
	require.Equal(t, int64(1), seeded.Data.Classes)
	require.Equal(t, int64(1), seeded.Data.Registrations)

	// The seeded student can now take assignments given to the new class.
	assignmentID := createAssignedAssignment(t, a)
	resp = a.request(t, http.MethodPut, fmt.Sprintf("/api/v2/assignments/%d/classes", assignmentID),
		map[string]interface{}{"class_ids": []uint{30}}, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	startAttempt(t, a, assignmentID, outsiderID)
}

func TestSeedHandlerDisabled(t *testing.T) {
	a := newTestApp(t)
	logger := zerolog.New(io.Discard)

	seedService := service.NewSeedService(repository.NewRosterRepository(a.db), nil, validator.New(), false, "secret", logger)
	app := fiber.New()
	handler.NewSeedHandler(seedService, logger).Register(app.Group("/api/v1/seed"))

	resp := seedRequest(t, app, "secret", dto.RosterSeedRequest{})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
