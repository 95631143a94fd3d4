package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/types"
)

// LoginResponse is returned by a successful Google login.
type LoginResponse struct {
	User              *models.User `json:"user"`
	Token             string       `json:"token"`
	ProfileIncomplete bool         `json:"profileIncomplete"`
}

type AuthHandler struct {
	authService service.IAuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService service.IAuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes registers the unauthenticated login endpoint.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/google", h.GoogleLogin)
	}
}

// GoogleLogin exchanges a Google ID token for a session token, creating
// the user on first login.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req types.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.authService.LoginWithGoogle(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:              result.User,
		Token:             result.Token,
		ProfileIncomplete: result.ProfileIncomplete,
	})
}
