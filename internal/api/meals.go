package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/internal/middleware"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
)

// DefaultMaxUploadBytes bounds a meal photo upload.
const DefaultMaxUploadBytes int64 = 10 << 20

// MealSummary is the client view of a freshly analyzed meal.
type MealSummary struct {
	ID       uint          `json:"id"`
	Items    []string      `json:"items"`
	Calories float64       `json:"calories"`
	Protein  float64       `json:"protein"`
	Carbs    float64       `json:"carbs"`
	Fats     float64       `json:"fats"`
	Macros   models.Macros `json:"macros"`
	ImageURL *string       `json:"imageUrl"`
}

// CreateMealResponse is the answer to a photo upload.
type CreateMealResponse struct {
	Message string       `json:"message"`
	Meal    *MealSummary `json:"meal,omitempty"`
}

// MealView is a stored meal with its resolved image URL.
type MealView struct {
	models.Meal
	ImageURL *string `json:"imageUrl"`
}

type MealHandler struct {
	mealService   service.IMealService
	rollupService service.IRollupService
	uploadLimiter *middleware.RateLimiter
	maxUpload     int64
	logger        *slog.Logger
}

func NewMealHandler(meals service.IMealService, rollups service.IRollupService, uploadLimiter *middleware.RateLimiter, maxUpload int64, logger *slog.Logger) *MealHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &MealHandler{
		mealService:   meals,
		rollupService: rollups,
		uploadLimiter: uploadLimiter,
		maxUpload:     maxUpload,
		logger:        logger,
	}
}

// RegisterRoutes expects router to be behind AuthMiddleware.
func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup) {
	meals := router.Group("/meals")
	{
		meals.POST("", h.uploadLimiter.RateLimitMiddleware(), h.CreateMeal)
		meals.GET("/daily", h.Daily)
		meals.GET("/monthly", h.Monthly)
		meals.GET("/:meal_id", h.GetMeal)
		meals.DELETE("/:meal_id", h.DeleteMeal)
	}
}

// CreateMeal accepts a multipart photo upload ("image", optional
// "mealType"), analyzes it and stores the meal.
func (h *MealHandler) CreateMeal(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	image, contentType, err := readImage(c)
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "image too large"})
			return
		}
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			h.logger.WarnContext(c.Request.Context(), "unreadable upload", "error", err)
		}
		badRequest(c, "image file required")
		return
	}

	result, err := h.mealService.CreateMeal(c.Request.Context(), user, service.CreateMealInput{
		MealType:    c.PostForm("mealType"),
		Image:       image,
		ContentType: contentType,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if result.NoFoodDetected {
		c.JSON(http.StatusOK, CreateMealResponse{Message: "No food detected"})
		return
	}

	m := result.Meal
	c.JSON(http.StatusOK, CreateMealResponse{
		Message: "Meal detected and saved successfully",
		Meal: &MealSummary{
			ID:       m.ID,
			Items:    result.Items,
			Calories: m.Calories,
			Protein:  m.Protein,
			Carbs:    m.Carbs,
			Fats:     m.Fats,
			Macros:   m.Macros,
			ImageURL: absoluteURL(c, result.ImageURL),
		},
	})
}

// isTooLarge reports a body cut off by http.MaxBytesReader. Some multipart
// errors flatten the cause, hence the string check.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func readImage(c *gin.Context) ([]byte, string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, "", err
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}

// GetMeal returns one of the caller's meals.
func (h *MealHandler) GetMeal(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	meal, err := h.mealService.GetMeal(c.Request.Context(), user, mealID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MealView{Meal: *meal, ImageURL: absoluteURL(c, h.mealService.ImageURL(meal.Image))})
}

// DeleteMeal removes one of the caller's meals. Meals owned by other users
// are reported as not found.
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	if err := h.mealService.DeleteMeal(c.Request.Context(), user, mealID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted successfully"})
}

// Daily summarizes today, or the date given as ?date=YYYY-MM-DD.
func (h *MealHandler) Daily(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}
	day, err := h.rollupService.ResolveDate(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rollup, err := h.rollupService.Daily(c.Request.Context(), user, day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rollup)
}

// Monthly summarizes the month containing today or ?date.
func (h *MealHandler) Monthly(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}
	day, err := h.rollupService.ResolveDate(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rollup, err := h.rollupService.Monthly(c.Request.Context(), user, day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rollup)
}

func mealIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("meal_id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "meal not found"})
		return 0, false
	}
	return uint(id), true
}

// absoluteURL resolves a store URL against the request host. Absolute
// URLs (S3) pass through; an empty URL becomes null.
func absoluteURL(c *gin.Context, u string) *string {
	if u == "" {
		return nil
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return &u
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	abs := scheme + "://" + c.Request.Host + u
	return &abs
}
