package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/service"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ExternalErrorResponse carries what a failing upstream model said.
type ExternalErrorResponse struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	RawText string `json:"raw_text"`
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrInvalidCredential, http.StatusBadRequest},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrInvalidInput, http.StatusBadRequest},
}

// respondError maps a service error onto a status code and JSON body.
// Internal failures are logged and answered without detail.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var ext *service.ExternalServiceError
	if errors.As(err, &ext) {
		c.JSON(http.StatusInternalServerError, ExternalErrorResponse{
			Error:   ext.Op,
			Detail:  ext.Detail,
			RawText: ext.RawText,
		})
		return
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			c.JSON(s.status, ErrorResponse{Error: message(err, s.err)})
			return
		}
	}

	logger.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	if errors.Is(err, service.ErrStorage) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage error"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// message drops the "<sentinel>: " prefix added by the services.
func message(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != "" {
		return trimmed
	}
	return msg
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
