package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is the custom error handler for Fiber. Application errors
// carry their own status mapping; everything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		code := statusForKind(appErr.Kind)
		if appErr.Kind == apperr.KindUpstream {
			log := logger.GetLogger("handlers")
			log.Errorw("Upstream failure", "path", c.Path(), "status", appErr.Status, "error", appErr.Message)
		}
		return c.Status(code).JSON(ErrorResponse{Error: appErr.Message})
	}

	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindDuplicate:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindRateLimited:
		return fiber.StatusTooManyRequests
	case apperr.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
