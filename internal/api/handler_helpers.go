package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/service"
	"github.com/gerrardelliot83-create/floe/internal/store"
)

// HandleError logs err and writes an error envelope. A zero status is
// derived from err.
func HandleError(c *gin.Context, logger logging.Logger, err error, status int, msg string) {
	if status == 0 {
		status = statusFor(err)
	}
	requestID := c.GetString(requestIDKey)
	if status >= http.StatusInternalServerError {
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	} else {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}
	c.JSON(status, Failure(status, msg+": "+err.Error()))
}

// HandleSuccess writes data in a success envelope.
func HandleSuccess(c *gin.Context, logger logging.Logger, status int, data any, meta map[string]any) {
	requestID := c.GetString(requestIDKey)
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(status, Success(data, meta))
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, service.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrAmbiguousID), errors.As(err, &verrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
