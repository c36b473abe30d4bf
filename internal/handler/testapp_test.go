package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/attempt"
	"github.com/noah-isme/gema-tutor-api/internal/config"
	"github.com/noah-isme/gema-tutor-api/internal/database"
	"github.com/noah-isme/gema-tutor-api/internal/handler"
	"github.com/noah-isme/gema-tutor-api/internal/middleware"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
	"github.com/noah-isme/gema-tutor-api/internal/router"
	"github.com/noah-isme/gema-tutor-api/internal/service"
)

const (
	teacherID      uint = 1
	otherTeacherID uint = 2
	studentID      uint = 100
	classmateID    uint = 101
	outsiderID     uint = 200
)

type envelope[T any] struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

type testApp struct {
	app   *fiber.App
	db    *gorm.DB
	redis *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	seedClasses(t, db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewAssignmentRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	classRepo := repository.NewClassRepository(db)

	dashboardService := service.NewStudentDashboardService(assignmentRepo, submissionRepo, classRepo, client, time.Minute, logger)
	attemptService := service.NewAttemptService(service.AttemptServiceConfig{
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Classes:     classRepo,
		Store:       attempt.NewRedisStore(client, "attempt", time.Hour),
		Dashboard:   dashboardService,
		Validator:   validate,
		Logger:      logger,
	})

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		AssignmentHandler:       handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, classRepo, dashboardService, validate, logger), logger),
		TemplateHandler:         handler.NewTemplateHandler(service.NewTemplateService(templateRepo, assignmentRepo, validate, logger), logger),
		AttemptHandler:          handler.NewAttemptHandler(attemptService, middleware.RateLimit("submit", 5, time.Minute), logger),
		SubmissionHandler:       handler.NewSubmissionHandler(service.NewSubmissionService(submissionRepo, logger), logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		TrackingHandler:         handler.NewTrackingHandler(service.NewTrackingService(classRepo, assignmentRepo, submissionRepo, logger), logger),
		JWTMiddleware:           testIdentity,
	})

	return &testApp{app: app, db: db, redis: server}
}

// testIdentity stands in for JWTProtected: the caller is taken from test headers.
func testIdentity(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(middleware.LocalUserID, uint(id))
		c.Locals(middleware.LocalUserRole, c.Get("X-Test-Role"))
	}
	return c.Next()
}

func seedClasses(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&models.Class{ID: 10, Name: "Algebra", TeacherID: teacherID}).Error)
	require.NoError(t, db.Create(&models.Class{ID: 20, Name: "Geometry", TeacherID: otherTeacherID}).Error)
	require.NoError(t, db.Create(&models.ClassRegistration{ClassID: 10, StudentID: studentID, StudentName: "Ana"}).Error)
	require.NoError(t, db.Create(&models.ClassRegistration{ClassID: 10, StudentID: classmateID, StudentName: "Budi"}).Error)
}

func (a *testApp) request(t *testing.T, method, path string, body interface{}, userID uint, role string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
		req.Header.Set("X-Test-Role", role)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return data
}

func arithmeticAssignment() map[string]interface{} {
	return map[string]interface{}{
		"title": "Warm up",
		"questions": []map[string]interface{}{
			{"text": "What is {{range(2,2)}} + {{range(3,3)}}?", "type": "single_response", "answer": "var_0 + var_1"},
			{"text": "Capital of France?", "type": "single_response", "answer": "Paris"},
			{"text": "Pick the second option", "type": "multiple_choice", "options": []string{"first", "second"}, "answer": 1},
		},
	}
}
