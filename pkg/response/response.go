package response

import (
	"errors"
	"net/http"

	"clothingstore/pkg/apperror"
)

// Response represents a standard API response format
type Response struct {
	Status     string                 `json:"status"`      // "success" or "error"
	StatusCode int                    `json:"status_code"` // HTTP status code
	Data       interface{}            `json:"data,omitempty"`
	Code       string                 `json:"code,omitempty"` // error kind
	Error      string                 `json:"error,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError converts an error into a status code and response body.
// Only the message of an *apperror.Error is exposed; causes stay in the logs.
func FromError(err error) (int, Response) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, Response{
			Status:     "error",
			StatusCode: http.StatusInternalServerError,
			Code:       string(apperror.KindInternal),
			Error:      "Internal server error",
		}
	}

	status := apperror.HTTPStatus(appErr.Kind)
	msg := appErr.Message
	if appErr.Kind == apperror.KindInternal && msg == "" {
		msg = "Internal server error"
	}
	return status, Response{
		Status:     "error",
		StatusCode: status,
		Code:       string(appErr.Kind),
		Error:      msg,
		Details:    appErr.Details,
	}
}
