package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/types"
)

// ProfileService handles user profile operations
type ProfileService struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		db:     db,
		logger: logger.With("component", "profile"),
	}
}

// CalculateBMI returns weight / (height in metres)^2 rounded to one decimal.
// ok is false unless both inputs are positive.
func CalculateBMI(weightKg, heightCm float64) (bmi float64, ok bool) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, false
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10, true
}

// GetProfile loads userID on behalf of actor. Users may only read their own
// profile.
func (s *ProfileService) GetProfile(ctx context.Context, actor *models.User, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %v", ErrStorage, err)
	}

	if actor == nil || actor.ID != user.ID {
		return nil, ErrForbidden
	}
	return &user, nil
}

// UpdateProfile applies the fields present in req, marks the profile as
// filled and recomputes BMI when weight and height allow it.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor *models.User, req *types.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, actor.ID)
		}
		return nil, fmt.Errorf("%w: load user: %v", ErrStorage, err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Gender != nil {
		user.Gender = req.Gender
	}
	if req.Weight != nil {
		user.Weight = req.Weight
	}
	if req.Height != nil {
		user.Height = req.Height
	}
	if req.Goal != nil {
		user.Goal = req.Goal
	}
	user.ProfileFilled = true

	if req.HasSessionInfo() {
		info := models.ParseSessionInfo(req.SessionInfo)
		user.SessionInfo = &info
	}

	if user.Weight != nil && user.Height != nil {
		if bmi, ok := CalculateBMI(*user.Weight, *user.Height); ok {
			user.BMI = &bmi
		}
	}

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("%w: save profile: %v", ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "profile updated", "user_id", user.ID)
	return &user, nil
}
