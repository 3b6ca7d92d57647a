package handlers

import (
	"errors"
	"time"

	"katalog/internal/apperror"
	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TimestampLayout renders error timestamps as ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// MsgResourceExists is reported when the store rejects a write on a unique index.
const MsgResourceExists = "Resource already exists"

// ErrorHandler is the single place failures become HTTP responses. Error
// bodies are always JSON regardless of the negotiated format.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := classify(err)
		if appErr.Status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		details := appErr.Details
		if details == nil {
			details = map[string]interface{}{}
		}
		return c.Status(appErr.Status).JSON(models.ErrorEnvelope{
			Error: models.ErrorBody{
				Code:      appErr.Code,
				Message:   appErr.Message,
				Details:   details,
				Timestamp: time.Now().UTC().Format(TimestampLayout),
				Path:      c.Path(),
			},
		})
	}
}

func classify(err error) *apperror.Error {
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}

	var dup *repositories.DuplicateKeyError
	if errors.As(err, &dup) {
		return apperror.Conflict(MsgResourceExists).WithDetails(map[string]interface{}{"field": dup.Detail})
	}
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return apperror.Conflict(MsgResourceExists)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperror.New(fiberErr.Code, codeForStatus(fiberErr.Code), fiberErr.Message)
	}

	return apperror.Internal()
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperror.CodeValidation
	case fiber.StatusUnauthorized:
		return apperror.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperror.CodeForbidden
	case fiber.StatusNotFound:
		return apperror.CodeNotFound
	case fiber.StatusConflict:
		return apperror.CodeConflict
	}
	if status >= fiber.StatusInternalServerError {
		return apperror.CodeInternal
	}
	return "CUSTOM_ERROR"
}
