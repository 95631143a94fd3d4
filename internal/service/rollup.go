package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/platewise/backend/internal/models"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Meal-type buckets. Meal types are matched case-insensitively and anything
// unrecognized lands in BucketOther.
const (
	BucketBreakfast = "breakfast"
	BucketLunch     = "lunch"
	BucketDinner    = "dinner"
	BucketSnacks    = "snacks"
	BucketOther     = "other"
)

// Breakdown is calories per meal-type bucket.
type Breakdown struct {
	Breakfast float64 `json:"breakfast"`
	Lunch     float64 `json:"lunch"`
	Dinner    float64 `json:"dinner"`
	Snacks    float64 `json:"snacks"`
	Other     float64 `json:"other"`
}

// MacroTotals sums macros in grams.
type MacroTotals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// DaySummary aggregates the meals of one day.
type DaySummary struct {
	Total     float64     `json:"total"`
	Breakdown Breakdown   `json:"breakdown"`
	Macros    MacroTotals `json:"macros"`
}

// DailyRollup is the summary for a single calendar date.
type DailyRollup struct {
	Date string `json:"date"`
	DaySummary
}

// DayEntry is one populated day of a monthly rollup.
type DayEntry struct {
	Day int `json:"day"`
	DaySummary
}

// MonthlyRollup lists days of the month that have meals, ascending.
type MonthlyRollup struct {
	Month string     `json:"month"`
	Year  int        `json:"year"`
	Days  []DayEntry `json:"days"`
}

// BucketFor classifies a meal type.
func BucketFor(mealType string) string {
	switch b := strings.ToLower(mealType); b {
	case BucketBreakfast, BucketLunch, BucketDinner, BucketSnacks:
		return b
	default:
		return BucketOther
	}
}

func (b *Breakdown) add(bucket string, calories float64) {
	switch bucket {
	case BucketBreakfast:
		b.Breakfast += calories
	case BucketLunch:
		b.Lunch += calories
	case BucketDinner:
		b.Dinner += calories
	case BucketSnacks:
		b.Snacks += calories
	default:
		b.Other += calories
	}
}

// Summarize folds meals into totals, bucket calories and macros.
func Summarize(meals []models.Meal) DaySummary {
	var s DaySummary
	for _, m := range meals {
		s.Total += m.Calories
		s.Breakdown.add(BucketFor(m.MealType), m.Calories)
		s.Macros.Protein += m.Protein
		s.Macros.Carbs += m.Carbs
		s.Macros.Fats += m.Fats
	}
	return s
}

// RollupService computes calendar summaries of a user's meals. Calendar
// boundaries are taken in loc.
type RollupService struct {
	db     *gorm.DB
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

var _ IRollupService = (*RollupService)(nil)

func NewRollupService(db *gorm.DB, loc *time.Location, logger *slog.Logger) *RollupService {
	if loc == nil {
		loc = time.UTC
	}
	return &RollupService{
		db:     db,
		loc:    loc,
		logger: logger.With("component", "rollup"),
		now:    time.Now,
	}
}

// WithClock replaces the source of "today".
func (s *RollupService) WithClock(now func() time.Time) *RollupService {
	s.now = now
	return s
}

// ResolveDate parses a YYYY-MM-DD date in the service location. An empty
// string means today.
func (s *RollupService) ResolveDate(value string) (time.Time, error) {
	if value == "" {
		return s.now().In(s.loc), nil
	}
	day, err := time.ParseInLocation(DateLayout, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return day, nil
}

// Daily summarizes the meals created on day's calendar date.
func (s *RollupService) Daily(ctx context.Context, user *models.User, day time.Time) (*DailyRollup, error) {
	day = day.In(s.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	meals, err := s.mealsBetween(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	return &DailyRollup{
		Date:       start.Format(DateLayout),
		DaySummary: Summarize(meals),
	}, nil
}

// Monthly summarizes day's month, one entry per day that has meals.
func (s *RollupService) Monthly(ctx context.Context, user *models.User, day time.Time) (*MonthlyRollup, error) {
	day = day.In(s.loc)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 1, 0)

	meals, err := s.mealsBetween(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[int][]models.Meal)
	for _, m := range meals {
		d := m.CreatedAt.In(s.loc).Day()
		byDay[d] = append(byDay[d], m)
	}

	days := make([]DayEntry, 0, len(byDay))
	for d, dayMeals := range byDay {
		days = append(days, DayEntry{Day: d, DaySummary: Summarize(dayMeals)})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	return &MonthlyRollup{
		Month: start.Month().String(),
		Year:  start.Year(),
		Days:  days,
	}, nil
}

func (s *RollupService) mealsBetween(ctx context.Context, userID uint, start, end time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start.UTC(), end.UTC()).
		Order("created_at ASC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("%w: load meals: %v", ErrStorage, err)
	}
	return meals, nil
}
