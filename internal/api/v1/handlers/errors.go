package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager-api/internal/common"
	"taskmanager-api/pkg/logger"
)

// requestError is a client error raised at the boundary before any use-case
// runs.
type requestError struct {
	status  int
	message string
	details interface{}
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string) error {
	return &requestError{status: fiber.StatusBadRequest, message: message}
}

func unprocessable(message string, details interface{}) error {
	return &requestError{status: fiber.StatusUnprocessableEntity, message: message, details: details}
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func validationDetails(verrs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func failure(c *fiber.Ctx, status int, message string, details interface{}) error {
	body := fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	}
	if details != nil {
		body["errors"] = details
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler renders every error that reaches the app as the standard
// envelope. Store and unknown failures are logged and reported without
// detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		reqErr   *requestError
		verrs    validator.ValidationErrors
		fiberErr *fiber.Error
	)

	switch {
	case errors.As(err, &reqErr):
		return failure(c, reqErr.status, reqErr.message, reqErr.details)
	case errors.As(err, &verrs):
		return failure(c, fiber.StatusUnprocessableEntity, "Validation error", validationDetails(verrs))
	case errors.Is(err, common.ErrNotFound):
		return failure(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, common.ErrUniqueViolation):
		return failure(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, common.ErrInvalidID):
		return failure(c, fiber.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrTokenInvalid):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return failure(c, fiber.StatusUnauthorized, err.Error(), nil)
	case errors.As(err, &fiberErr):
		return failure(c, fiberErr.Code, fiberErr.Message, nil)
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", c.Method()),
		zap.String("url", c.OriginalURL()),
	}
	var ce *common.Error
	if errors.As(err, &ce) && ce.Cause() != nil {
		fields = append(fields, zap.NamedError("cause", ce.Cause()))
	}
	logger.ErrorLogger.Error("Request failed", fields...)
	return failure(c, fiber.StatusInternalServerError, "internal error", nil)
}
