package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/logging"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/testhelpers"
)

func utc(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func TestBucketFor(t *testing.T) {
	cases := map[string]string{
		"breakfast": service.BucketBreakfast,
		"Lunch":     service.BucketLunch,
		"DINNER":    service.BucketDinner,
		"snacks":    service.BucketSnacks,
		"snack":     service.BucketOther,
		"brunch":    service.BucketOther,
		"Unknown":   service.BucketOther,
		"":          service.BucketOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, service.BucketFor(in), in)
	}
}

func TestSummarize(t *testing.T) {
	got := service.Summarize([]models.Meal{
		{MealType: "Breakfast", Calories: 300, Protein: 10, Carbs: 40, Fats: 5},
		{MealType: "lunch", Calories: 600, Protein: 30, Carbs: 70, Fats: 20},
		{MealType: "snacks", Calories: 150, Protein: 2, Carbs: 20, Fats: 7},
		{MealType: "midnight", Calories: 50},
		{MealType: "", Calories: 25},
	})

	assert.InDelta(t, 1125, got.Total, 1e-9)
	assert.Equal(t, service.Breakdown{Breakfast: 300, Lunch: 600, Snacks: 150, Other: 75}, got.Breakdown)
	assert.Equal(t, service.MacroTotals{Protein: 42, Carbs: 130, Fats: 32}, got.Macros)

	assert.Equal(t, service.DaySummary{}, service.Summarize(nil))
}

func TestDailyRollup(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewRollupService(db, time.UTC, logging.Discard())
	user := testhelpers.CreateUser(t, db, "daily")
	other := testhelpers.CreateUser(t, db, "daily-other")

	testhelpers.CreateMeal(t, db, user, "breakfast", 300, utc(2026, 10, 15, 0, 0, 0))
	testhelpers.CreateMeal(t, db, user, "Lunch", 500, utc(2026, 10, 15, 12, 0, 0))
	testhelpers.CreateMeal(t, db, user, "snack", 100, utc(2026, 10, 15, 23, 59, 59))
	testhelpers.CreateMeal(t, db, user, "dinner", 900, utc(2026, 10, 14, 23, 59, 59))
	testhelpers.CreateMeal(t, db, user, "dinner", 800, utc(2026, 10, 16, 0, 0, 0))
	testhelpers.CreateMeal(t, db, other, "lunch", 700, utc(2026, 10, 15, 12, 0, 0))

	got, err := svc.Daily(context.Background(), user, utc(2026, 10, 15, 18, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, "2026-10-15", got.Date)
	assert.InDelta(t, 900, got.Total, 1e-9)
	assert.Equal(t, service.Breakdown{Breakfast: 300, Lunch: 500, Other: 100}, got.Breakdown)
	assert.InDelta(t, 90, got.Macros.Protein, 1e-9)

	empty, err := svc.Daily(context.Background(), user, utc(2026, 1, 1, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", empty.Date)
	assert.Equal(t, service.DaySummary{}, empty.DaySummary)
}

func TestDailyRollupUsesConfiguredTimezone(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ist := time.FixedZone("IST", 5*3600+1800)
	svc := service.NewRollupService(db, ist, logging.Discard())
	user := testhelpers.CreateUser(t, db, "tz")

	// 01:30 on Oct 15 local time, still Oct 14 in UTC
	testhelpers.CreateMeal(t, db, user, "breakfast", 250, utc(2026, 10, 14, 20, 0, 0))
	// 05:29 on Oct 16 local time
	testhelpers.CreateMeal(t, db, user, "breakfast", 999, utc(2026, 10, 15, 23, 59, 0))

	got, err := svc.Daily(context.Background(), user, time.Date(2026, 10, 15, 9, 0, 0, 0, ist))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", got.Date)
	assert.InDelta(t, 250, got.Total, 1e-9)
}

func TestMonthlyRollup(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewRollupService(db, time.UTC, logging.Discard())
	user := testhelpers.CreateUser(t, db, "monthly")

	testhelpers.CreateMeal(t, db, user, "dinner", 900, utc(2026, 9, 30, 23, 59, 59))
	testhelpers.CreateMeal(t, db, user, "breakfast", 300, utc(2026, 10, 1, 0, 0, 0))
	testhelpers.CreateMeal(t, db, user, "lunch", 400, utc(2026, 10, 3, 12, 0, 0))
	testhelpers.CreateMeal(t, db, user, "dinner", 600, utc(2026, 10, 3, 19, 0, 0))
	testhelpers.CreateMeal(t, db, user, "snacks", 150, utc(2026, 10, 31, 23, 0, 0))
	testhelpers.CreateMeal(t, db, user, "lunch", 500, utc(2026, 11, 1, 0, 0, 0))

	got, err := svc.Monthly(context.Background(), user, utc(2026, 10, 15, 0, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, "October", got.Month)
	assert.Equal(t, 2026, got.Year)
	require.Len(t, got.Days, 3)
	assert.Equal(t, []int{1, 3, 31}, []int{got.Days[0].Day, got.Days[1].Day, got.Days[2].Day})

	assert.InDelta(t, 300, got.Days[0].Total, 1e-9)
	assert.InDelta(t, 1000, got.Days[1].Total, 1e-9)
	assert.Equal(t, service.Breakdown{Lunch: 400, Dinner: 600}, got.Days[1].Breakdown)
	assert.InDelta(t, 150, got.Days[2].Breakdown.Snacks, 1e-9)

	var sum float64
	for _, d := range got.Days {
		sum += d.Total
	}
	assert.InDelta(t, 300+400+600+150, sum, 1e-9)

	empty, err := svc.Monthly(context.Background(), user, utc(2025, 2, 10, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "February", empty.Month)
	assert.Empty(t, empty.Days)
	assert.NotNil(t, empty.Days)
}

func TestResolveDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := utc(2026, 10, 14, 20, 0, 0)
	svc := service.NewRollupService(nil, ist, logging.Discard()).WithClock(func() time.Time { return now })

	today, err := svc.ResolveDate("")
	require.NoError(t, err)
	assert.Equal(t, 15, today.Day())

	day, err := svc.ResolveDate("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, time.March, day.Month())
	assert.Equal(t, 9, day.Day())

	for _, bad := range []string{"2026-02-30", "09/03/2026", "yesterday"} {
		_, err := svc.ResolveDate(bad)
		assert.ErrorIs(t, err, service.ErrInvalidInput, bad)
	}
}
