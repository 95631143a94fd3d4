package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/middleware"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/types"
)

type AdviceHandler struct {
	adviceService service.IAdviceService
	limiter       *middleware.RateLimiter
	logger        *slog.Logger
}

func NewAdviceHandler(advice service.IAdviceService, limiter *middleware.RateLimiter, logger *slog.Logger) *AdviceHandler {
	return &AdviceHandler{adviceService: advice, limiter: limiter, logger: logger}
}

// RegisterRoutes expects router to be behind AuthMiddleware.
func (h *AdviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	calories := router.Group("/calories")
	calories.Use(h.limiter.RateLimitMiddleware())
	{
		calories.POST("/calculate", h.CalculateTarget)
		calories.POST("/report", h.HealthReport)
	}
}

// CalculateTarget asks the model for a daily calorie and macro target.
func (h *AdviceHandler) CalculateTarget(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req types.CalorieTargetRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	out, err := h.adviceService.CalorieTarget(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// HealthReport asks the model for a personalized health report.
func (h *AdviceHandler) HealthReport(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req types.HealthReportRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	out, err := h.adviceService.HealthReport(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// bindOptionalJSON binds the body into dst; an empty body leaves dst zero.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}
