package service

import (
	"context"
	"time"

	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error)
	GenerateToken(googleID string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, actor *models.User, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, actor *models.User, req *types.UpdateProfileRequest) (*models.User, error)
}

// IMealService defines the interface for meal capture and removal
type IMealService interface {
	CreateMeal(ctx context.Context, user *models.User, in CreateMealInput) (*MealResult, error)
	GetMeal(ctx context.Context, user *models.User, mealID uint) (*models.Meal, error)
	DeleteMeal(ctx context.Context, user *models.User, mealID uint) error
	ImageURL(ref string) string
}

// IRollupService defines the interface for calendar summaries
type IRollupService interface {
	ResolveDate(value string) (time.Time, error)
	Daily(ctx context.Context, user *models.User, day time.Time) (*DailyRollup, error)
	Monthly(ctx context.Context, user *models.User, day time.Time) (*MonthlyRollup, error)
}

// IAdviceService defines the interface for generated nutrition advice
type IAdviceService interface {
	CalorieTarget(ctx context.Context, user *models.User, req *types.CalorieTargetRequest) (map[string]any, error)
	HealthReport(ctx context.Context, user *models.User, req *types.HealthReportRequest) (map[string]any, error)
}
