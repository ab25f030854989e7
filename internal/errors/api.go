package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body returned by the HTTP layer.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates an APIError with the given parameters.
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// statusFor maps application error types to HTTP status codes.
func statusFor(t ErrorType) int {
	switch t {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeInsufficientData, ErrTypeNoRows:
		return http.StatusUnprocessableEntity
	case ErrTypeDataFormat:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// APIErrorFrom converts any error into an APIError suitable for
// rendering. AppErrors keep their type as the error code; everything
// else becomes a generic 500.
func APIErrorFrom(err error) *APIError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return NewAPIError(statusFor(appErr.Type), string(appErr.Type), appErr.Message)
	}
	return NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error")
}

// RenderError writes err to the response as a JSON APIError.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := APIErrorFrom(err)
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apiErr)
}
