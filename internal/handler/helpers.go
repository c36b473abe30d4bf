package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/middleware"
	"github.com/noah-isme/gema-tutor-api/internal/quiz"
	"github.com/noah-isme/gema-tutor-api/internal/service"
	"github.com/noah-isme/gema-tutor-api/internal/utils"
)

func actorFromContext(c *fiber.Ctx) service.Actor {
	id, _ := middleware.UserID(c)
	return service.Actor{ID: id, Role: middleware.UserRole(c)}
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(value), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}

// respondError maps service errors onto the HTTP envelope. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	var questionErr *quiz.ValidationError

	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	case errors.As(err, &questionErr):
		details := map[string]interface{}{"reason": questionErr.Reason}
		if questionErr.Index >= 0 {
			details["question_index"] = questionErr.Index
		}
		return utils.Fail(c, fiber.StatusBadRequest, questionErr.Error(), details)
	case errors.Is(err, service.ErrAlreadySubmitted), errors.Is(err, service.ErrDuplicateSubmission):
		id, _ := service.ExistingSubmissionID(err)
		return utils.FailWithData(c, fiber.StatusConflict, "assignment already submitted", fiber.Map{"submission_id": id})
	case errors.Is(err, quiz.ErrInvalidAttempt):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.Fail(c, fiber.StatusForbidden, "not enrolled for this assignment", nil)
	case errors.Is(err, service.ErrForbidden):
		return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.Fail(c, fiber.StatusNotFound, "assignment not found", nil)
	case errors.Is(err, service.ErrTemplateNotFound):
		return utils.Fail(c, fiber.StatusNotFound, "template not found", nil)
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.Fail(c, fiber.StatusNotFound, "submission not found", nil)
	default:
		log := middleware.RequestLogger(c, logger)
		log.Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", nil)
	}
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Namespace()] = fieldErr.Tag()
	}
	return details
}
