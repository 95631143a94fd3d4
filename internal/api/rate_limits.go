package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/middleware"
)

// RateLimitHandler reports the caller's remaining quota.
type RateLimitHandler struct {
	limiters map[string]*middleware.RateLimiter
	logger   *slog.Logger
}

// NewRateLimitHandler exposes the given limiters by name.
func NewRateLimitHandler(limiters map[string]*middleware.RateLimiter, logger *slog.Logger) *RateLimitHandler {
	return &RateLimitHandler{limiters: limiters, logger: logger}
}

// RegisterRoutes expects router to be behind AuthMiddleware.
func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rate-limits", h.Status)
}

// Status lists limit, remaining and reset time per enabled limiter.
func (h *RateLimitHandler) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}
	subject := strconv.FormatUint(uint64(user.ID), 10)

	out := gin.H{}
	for name, rl := range h.limiters {
		if !rl.Enabled() {
			continue
		}
		remaining, reset, err := rl.GetRemainingRequests(c.Request.Context(), subject)
		if err != nil {
			h.logger.WarnContext(c.Request.Context(), "rate limit lookup failed", "limiter", name, "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to check rate limit"})
			return
		}
		out[name] = gin.H{
			"limit":      rl.Limit(),
			"remaining":  remaining,
			"reset_time": reset.Unix(),
			"window":     rl.Window().String(),
		}
	}
	c.JSON(http.StatusOK, out)
}
