package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/models"
	"alfredoptarigan/resume-roast/internal/services"
	"alfredoptarigan/resume-roast/internal/validation"
)

const (
	msgInvalidRequest     = "Invalid request"
	msgAIServiceError     = "AI service error"
	msgInvalidAIFormat    = "Invalid AI response format"
	msgAIValidationFailed = "AI response failed validation"
	msgInternalError      = "Internal server error"
	msgMethodNotAllowed   = "Method not allowed"
)

// writePipelineError maps a failed run onto its HTTP response and returns the status used.
func writePipelineError(c *fiber.Ctx, log *zap.Logger, task string, err error) (int, error) {
	fields := []zap.Field{zap.String("task", task), zap.Error(err)}

	var (
		status int
		body   models.ErrorResponse
	)

	switch services.StageOf(err) {
	case services.StageInput:
		status = fiber.StatusBadRequest
		body = models.ErrorResponse{Error: msgInvalidRequest, Details: validation.Details(err)}
		if len(body.Details) == 0 {
			body.Details = []string{err.Error()}
		}
		log.Info("rejected invalid request", append(fields, zap.Strings("details", body.Details))...)
	case services.StageProvider:
		status = fiber.StatusBadGateway
		body = models.ErrorResponse{Error: msgAIServiceError}
		log.Error("provider call failed", fields...)
	case services.StageParse:
		status = fiber.StatusBadGateway
		body = models.ErrorResponse{Error: msgInvalidAIFormat}
		log.Error("provider returned unparseable output", fields...)
	case services.StageOutput:
		status = fiber.StatusBadGateway
		body = models.ErrorResponse{Error: msgAIValidationFailed, Details: validation.Details(err)}
		log.Error("provider output failed validation", fields...)
	default:
		status = fiber.StatusInternalServerError
		body = models.ErrorResponse{Error: msgInternalError}
		log.Error("pipeline failed", fields...)
	}

	return status, c.Status(status).JSON(body)
}

// MethodNotAllowed answers any verb other than the one registered for a route.
func MethodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, fiber.MethodPost)
	return c.Status(fiber.StatusMethodNotAllowed).JSON(models.ErrorResponse{Error: msgMethodNotAllowed})
}

// ErrorHandler renders errors that escape handlers as JSON.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
}
