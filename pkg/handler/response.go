package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

// Envelope is the standard API response wrapper.
type Envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// APIError represents an error in the API response. NeedsAuth tells the
// client to redirect to login instead of rendering an inline error.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	NeedsAuth bool   `json:"needs_auth,omitempty"`
}

// JSON writes a JSON response with the standard envelope.
func JSON(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Data: data})
}

// NewHTTPErrorHandler returns the global error handler for echo. Domain
// errors are mapped to status codes; user-facing copy comes from the hints
// attached along the error chain.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, apiErr := mapError(err, logger)
		if jsonErr := c.JSON(status, Envelope{Error: &apiErr}); jsonErr != nil {
			logger.Error("Failed to send error response", zap.Error(jsonErr))
		}
	}
}

func mapError(err error, logger *zap.Logger) (int, APIError) {
	// Handle echo's own HTTP errors (404, 405, etc.)
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, APIError{
			Code:    http.StatusText(echoErr.Code),
			Message: msg,
		}
	}

	hint := errors.FlattenHints(err)

	switch {
	case errors.Is(err, errdomain.ErrUnauthenticated):
		return http.StatusUnauthorized, APIError{
			Code:      "unauthenticated",
			Message:   "Authentication is required",
			NeedsAuth: true,
		}
	case errors.Is(err, errdomain.ErrNoPermission):
		return http.StatusForbidden, APIError{
			Code:    "no_permission",
			Message: "You do not have permission to access this resource",
		}
	case errors.Is(err, errdomain.ErrNotFound):
		return http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: withFallback(hint, "The requested resource was not found"),
		}
	case errors.Is(err, errdomain.ErrAlreadyExists):
		return http.StatusConflict, APIError{
			Code:    "already_exists",
			Message: withFallback(hint, "The resource already exists"),
		}
	case errors.Is(err, errdomain.ErrJobNotPublished):
		return http.StatusConflict, APIError{
			Code:    "job_not_published",
			Message: withFallback(hint, "This job posting is not accepting applications"),
		}
	case errors.Is(err, errdomain.ErrFileRejected):
		return http.StatusUnprocessableEntity, APIError{
			Code:    "file_rejected",
			Message: withFallback(hint, "One or more files were rejected"),
		}
	case errors.Is(err, errdomain.ErrInvalidArgument):
		return http.StatusBadRequest, APIError{
			Code:    "invalid_argument",
			Message: withFallback(hint, "The request is invalid"),
		}
	default:
		logger.Error("Unhandled error", zap.Error(err))
		return http.StatusInternalServerError, APIError{
			Code:    "internal",
			Message: withFallback(hint, "An unexpected error occurred"),
		}
	}
}

func withFallback(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
