// Package handler holds what the HTTP handlers of every domain share.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flock/internal/logger"
	"flock/pkg/errors"
)

type BaseHandler struct {
	Logger logger.Logger
}

// HandleError writes err as an ErrorResponse. Server-side failures are logged at error level.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.DebugwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

// BindJSON decodes the request body into dst and answers 400 when it is malformed.
func (h *BaseHandler) BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.HandleError(c, errors.ErrValidation.WithMessage("malformed request body").WithCause(err))
		return false
	}
	return true
}
