package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/platewise/backend/internal/catalog"
	"github.com/platewise/backend/internal/detection"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/storage"
)

// CreateMealInput is an uploaded meal photo.
type CreateMealInput struct {
	MealType    string
	Image       []byte
	ContentType string
}

// MealResult describes the outcome of analyzing a photo. When
// NoFoodDetected is set no meal was stored and Meal is nil.
type MealResult struct {
	NoFoodDetected bool
	Meal           *models.Meal
	Items          []string
	ImageURL       string
}

// MealService runs the photo to nutrition pipeline and owns meal records.
type MealService struct {
	db       *gorm.DB
	catalog  *catalog.Catalog
	detector detection.Detector
	store    storage.ImageStore
	logger   *slog.Logger
	now      func() time.Time
}

var _ IMealService = (*MealService)(nil)

func NewMealService(db *gorm.DB, cat *catalog.Catalog, detector detection.Detector, store storage.ImageStore, logger *slog.Logger) *MealService {
	return &MealService{
		db:       db,
		catalog:  cat,
		detector: detector,
		store:    store,
		logger:   logger.With("component", "meal"),
		now:      time.Now,
	}
}

// WithClock replaces the creation timestamp source.
func (s *MealService) WithClock(now func() time.Time) *MealService {
	s.now = now
	return s
}

// CreateMeal stores the photo, detects food, prices it against the catalog
// and persists the meal. Identical uploads produce distinct meals.
func (s *MealService) CreateMeal(ctx context.Context, user *models.User, in CreateMealInput) (*MealResult, error) {
	if len(in.Image) == 0 {
		return nil, fmt.Errorf("%w: image file required", ErrInvalidInput)
	}

	ref, err := s.store.Save(ctx, storage.NewMealImageKey(), in.Image, in.ContentType)
	if err != nil {
		s.logger.ErrorContext(ctx, "image store failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	labels, err := s.detector.Detect(ctx, in.Image)
	if err != nil {
		s.logger.ErrorContext(ctx, "food detection failed", "user_id", user.ID, "error", err)
		return nil, detectionError(err)
	}
	if len(labels) == 0 {
		return &MealResult{NoFoodDetected: true}, nil
	}

	totals := s.catalog.Aggregate(labels)

	mealType := strings.TrimSpace(in.MealType)
	if mealType == "" {
		mealType = models.DefaultMealType
	}

	meal := &models.Meal{
		UserID:    user.ID,
		MealType:  mealType,
		Calories:  totals.Calories,
		Protein:   totals.Protein,
		Carbs:     totals.Carbs,
		Fats:      totals.Fats,
		Items:     strings.Join(labels, ", "),
		Image:     ref,
		Macros:    totals.Macros(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, fmt.Errorf("%w: save meal: %v", ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "meal saved",
		"user_id", user.ID,
		"meal_id", meal.ID,
		"items", len(labels),
		"calories", meal.Calories,
	)

	return &MealResult{
		Meal:     meal,
		Items:    labels,
		ImageURL: s.store.URL(ref),
	}, nil
}

// GetMeal returns one of the user's meals.
func (s *MealService) GetMeal(ctx context.Context, user *models.User, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", mealID, user.ID).First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: meal not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load meal: %v", ErrStorage, err)
	}
	return &meal, nil
}

// DeleteMeal removes a meal owned by user. A meal that does not exist and a
// meal owned by someone else are reported the same way.
func (s *MealService) DeleteMeal(ctx context.Context, user *models.User, mealID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", mealID, user.ID).Delete(&models.Meal{})
	if res.Error != nil {
		return fmt.Errorf("%w: delete meal: %v", ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: meal not found", ErrNotFound)
	}
	s.logger.InfoContext(ctx, "meal deleted", "user_id", user.ID, "meal_id", mealID)
	return nil
}

// ImageURL resolves a stored image reference.
func (s *MealService) ImageURL(ref string) string {
	return s.store.URL(ref)
}

func detectionError(err error) error {
	ext := &ExternalServiceError{Op: "food detection failed", Detail: err.Error(), Err: err}
	var respErr *detection.ResponseError
	if errors.As(err, &respErr) {
		ext.RawText = respErr.Body
	}
	return ext
}
