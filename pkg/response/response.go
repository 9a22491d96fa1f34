package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinevault/cinevault/pkg/apperr"
)

// APIResponse is the uniform JSON envelope for every endpoint.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

func Error[T any](ctx *gin.Context, status int, message string, err interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	})
}

// AbortError writes the envelope and aborts the middleware chain.
func AbortError(ctx *gin.Context, status int, message string, err interface{}) {
	Error[any](ctx, status, message, err)
	ctx.Abort()
}

// FromError translates a domain error into the envelope. Clients only ever
// see the human-readable message; unclassified errors become a generic 500.
func FromError(ctx *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		var details interface{}
		if ve.Field != "" {
			details = map[string]string{ve.Field: ve.Message}
		}
		Error[any](ctx, http.StatusBadRequest, ve.Message, details)
		return
	}
	var nfe *apperr.NotFoundError
	if errors.As(err, &nfe) {
		Error[any](ctx, http.StatusNotFound, nfe.Error(), nil)
		return
	}
	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		Error[any](ctx, http.StatusConflict, ce.Message, nil)
		return
	}
	var ue *apperr.UnauthorizedError
	if errors.As(err, &ue) {
		status := http.StatusUnauthorized
		if ue.Forbidden {
			status = http.StatusForbidden
		}
		Error[any](ctx, status, ue.Message, nil)
		return
	}
	var pe *apperr.ProviderError
	if errors.As(err, &pe) {
		Error[any](ctx, http.StatusBadGateway, "payment provider unavailable", nil)
		return
	}
	Error[any](ctx, http.StatusInternalServerError, "internal server error", nil)
}
