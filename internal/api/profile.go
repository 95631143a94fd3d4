package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/middleware"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/types"
)

type ProfileHandler struct {
	profileService service.IProfileService
	logger         *slog.Logger
}

func NewProfileHandler(profileService service.IProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// RegisterRoutes expects router to be behind AuthMiddleware.
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetOwnProfile)
		profile.GET("/:user_id", h.GetProfile)
		profile.POST("", h.UpdateProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

// GetOwnProfile returns the caller's profile.
func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), actor, actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetProfile returns the profile with the given id if it is the caller's.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), actor, uint(userID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial profile update.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication credentials were not provided"})
}
