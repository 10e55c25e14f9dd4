package services

import (
	"context"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
)

func TestApplyDeltaSeedsAndIncrements(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewSummaryService(db)

	day := time.Date(2026, 3, 10, 13, 30, 0, 0, time.Local)

	err := svc.ApplyDelta(db, user.ID, day, MacroDelta{Calories: 500, Protein: 30, Carbs: 50, Fats: 20})
	assert.NoError(t, err)

	// second delta on the same day must hit the same row
	err = svc.ApplyDelta(db, user.ID, day, MacroDelta{Calories: 250, Protein: 10, Carbs: 25, Fats: 5})
	assert.NoError(t, err)

	var rows []models.DailySummary
	assert.NoError(t, db.Where("user_id = ?", user.ID).Find(&rows).Error)
	assert.Len(t, rows, 1)
	assert.Equal(t, 750.0, rows[0].TotalCalories)
	assert.Equal(t, 40.0, rows[0].TotalProtein)
	assert.Equal(t, 75.0, rows[0].TotalCarbs)
	assert.Equal(t, 25.0, rows[0].TotalFats)
	assert.Equal(t, 2000, rows[0].GoalCalories)
}

func TestGoalCaloriesSnapshotIsImmutable(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewSummaryService(db)

	day := time.Now()
	assert.NoError(t, svc.ApplyDelta(db, user.ID, day, MacroDelta{Calories: 300}))

	// target change after the row exists must not rewrite the snapshot
	assert.NoError(t, db.Model(user).Update("target_calories", 2500).Error)
	assert.NoError(t, svc.ApplyDelta(db, user.ID, day, MacroDelta{Calories: 200}))

	view, err := svc.GetSummary(context.Background(), user.ID, day)
	assert.NoError(t, err)
	assert.Equal(t, 2000, view.GoalCalories)
	assert.Equal(t, 500.0, view.TotalCalories)
}

func TestGetSummaryEmptyDayUsesCurrentTarget(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2200)
	svc := NewSummaryService(db)

	view, err := svc.GetSummary(context.Background(), user.ID, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 0.0, view.TotalCalories)
	assert.Equal(t, 2200, view.GoalCalories)
	assert.Equal(t, 2200.0, view.Remaining)
	assert.Equal(t, 0.0, view.Percentage)
}

func TestGetSummaryIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewSummaryService(db)

	day := time.Now()
	assert.NoError(t, svc.ApplyDelta(db, user.ID, day, MacroDelta{Calories: 640, Protein: 22}))

	first, err := svc.GetSummary(context.Background(), user.ID, day)
	assert.NoError(t, err)
	second, err := svc.GetSummary(context.Background(), user.ID, day)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPercentageClampAndNegativeRemaining(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewSummaryService(db)

	day := time.Now()
	assert.NoError(t, svc.ApplyDelta(db, user.ID, day, MacroDelta{Calories: 2600}))

	view, err := svc.GetSummary(context.Background(), user.ID, day)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, view.Percentage)
	assert.Equal(t, -600.0, view.Remaining)
}

func TestGetSummaryUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSummaryService(db)

	_, err := svc.GetSummary(context.Background(), 999, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRange(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewSummaryService(db)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.Local)
	for _, offset := range []int{0, 2, 5, 9} {
		day := base.AddDate(0, 0, offset)
		assert.NoError(t, svc.ApplyDelta(db, user.ID, day, MacroDelta{Calories: 100}))
	}

	// [Apr 1, Apr 7] covers the first three logged days; Apr 10 is outside
	rows, err := svc.ListRange(ctx, user.ID, base, base.AddDate(0, 0, 6))
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i-1].Date.Before(rows[i].Date), "rows are ascending by date")
	}

	rows, err = svc.ListRange(ctx, user.ID, base.AddDate(0, 0, 20), base.AddDate(0, 0, 27))
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
