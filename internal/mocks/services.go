package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/types"
)

// MockAuthService is a mock implementation of service.IAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, idToken string) (*service.LoginResult, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) GenerateToken(googleID string) (string, error) {
	args := m.Called(googleID)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockProfileService is a mock implementation of service.IProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, actor *models.User, userID uint) (*models.User, error) {
	args := m.Called(ctx, actor, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, actor *models.User, req *types.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockMealService is a mock implementation of service.IMealService
type MockMealService struct {
	mock.Mock
}

func (m *MockMealService) CreateMeal(ctx context.Context, user *models.User, in service.CreateMealInput) (*service.MealResult, error) {
	args := m.Called(ctx, user, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MealResult), args.Error(1)
}

func (m *MockMealService) GetMeal(ctx context.Context, user *models.User, mealID uint) (*models.Meal, error) {
	args := m.Called(ctx, user, mealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meal), args.Error(1)
}

func (m *MockMealService) DeleteMeal(ctx context.Context, user *models.User, mealID uint) error {
	args := m.Called(ctx, user, mealID)
	return args.Error(0)
}

func (m *MockMealService) ImageURL(ref string) string {
	args := m.Called(ref)
	return args.String(0)
}

// MockRollupService is a mock implementation of service.IRollupService
type MockRollupService struct {
	mock.Mock
}

func (m *MockRollupService) ResolveDate(value string) (time.Time, error) {
	args := m.Called(value)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRollupService) Daily(ctx context.Context, user *models.User, day time.Time) (*service.DailyRollup, error) {
	args := m.Called(ctx, user, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DailyRollup), args.Error(1)
}

func (m *MockRollupService) Monthly(ctx context.Context, user *models.User, day time.Time) (*service.MonthlyRollup, error) {
	args := m.Called(ctx, user, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MonthlyRollup), args.Error(1)
}

// MockAdviceService is a mock implementation of service.IAdviceService
type MockAdviceService struct {
	mock.Mock
}

func (m *MockAdviceService) CalorieTarget(ctx context.Context, user *models.User, req *types.CalorieTargetRequest) (map[string]any, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockAdviceService) HealthReport(ctx context.Context, user *models.User, req *types.HealthReportRequest) (map[string]any, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}
