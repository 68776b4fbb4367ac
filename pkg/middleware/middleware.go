package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "flock/pkg/errors"
	"flock/pkg/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger is the subset of the service logger the middleware needs.
// *zap.SugaredLogger satisfies it.
type RequestLogger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggerMiddleware logs one line per request at a level chosen by status
// class. Health and scrape routes are only logged when they fail.
func LoggerMiddleware(logger RequestLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if quietRoutes[route] && status < http.StatusInternalServerError {
			return
		}

		fields := []interface{}{
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
		}
		if c.Request.URL.RawQuery != "" {
			fields = append(fields, "query", c.Request.URL.RawQuery)
		}
		fields = append(fields, logging.GetLogFields(c.Request.Context())...)
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, "error", errs)
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Errorw("HTTP request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warnw("HTTP request rejected", fields...)
		default:
			logger.Infow("HTTP request", fields...)
		}
	}
}

// RecoveryMiddleware answers 500 with the standard error body when a handler
// panics. The stack goes to the log, never to the client.
func RecoveryMiddleware(logger RequestLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := pkgerrors.RecoverPanic(recovered)

		fields := []interface{}{
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		}
		var appErr *pkgerrors.Error
		if errors.As(err, &appErr) {
			fields = append(fields, "stack_trace", appErr.Details["stack_trace"])
		}
		logger.Errorw("Panic recovered", append(fields, logging.GetLogFields(c.Request.Context())...)...)

		c.AbortWithStatusJSON(http.StatusInternalServerError, pkgerrors.ToErrorResponse(pkgerrors.ErrInternal))
	})
}

// RequestIDMiddleware propagates or assigns X-Request-ID and stores it in the request context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}
