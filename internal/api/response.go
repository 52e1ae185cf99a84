package api

import "net/http"

// AppError is the error half of the response envelope.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

// NewAppError builds an AppError.
func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// APIResponse is the JSON envelope every endpoint returns.
type APIResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *AppError      `json:"error,omitempty"`
}

// Success wraps data and optional meta.
func Success(data any, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta}
}

// Failure wraps an error with its HTTP status.
func Failure(status int, msg string) APIResponse {
	return APIResponse{Error: NewAppError(status, msg)}
}

// BadRequest is a 400 envelope.
func BadRequest(msg string) APIResponse { return Failure(http.StatusBadRequest, msg) }

// NotFound is a 404 envelope.
func NotFound(msg string) APIResponse { return Failure(http.StatusNotFound, msg) }

// InternalError is a 500 envelope.
func InternalError(msg string) APIResponse { return Failure(http.StatusInternalServerError, msg) }
