package services

import (
	"context"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
)

func newMealFixture(t *testing.T) (*MealService, *SummaryService, *models.User) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	summary := NewSummaryService(db)
	return NewMealService(db, summary, nil), summary, user
}

func estimate(cal, prot, carbs, fats float64) NutritionEstimate {
	return NutritionEstimate{Calories: cal, Protein: prot, Carbs: carbs, Fats: fats, Confidence: "high"}
}

func TestCreateMealUpdatesSummary(t *testing.T) {
	meals, summary, user := newMealFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 5, 2, 12, 0, 0, 0, time.Local)
	meal, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
		Description: "grilled chicken with rice",
		MealType:    "lunch",
		AteAt:       day,
		Estimate:    estimate(500, 42, 55, 12),
	})
	assert.NoError(t, err)
	assert.Equal(t, 500.0, meal.Calories)

	view, err := summary.GetSummary(ctx, user.ID, day)
	assert.NoError(t, err)
	assert.Equal(t, 500.0, view.TotalCalories)
	assert.Equal(t, 42.0, view.TotalProtein)
	assert.Equal(t, 1500.0, view.Remaining)
}

func TestCreateMealDefaultsTimestamp(t *testing.T) {
	meals, _, user := newMealFixture(t)

	before := time.Now()
	meal, err := meals.CreateMeal(context.Background(), user.ID, CreateMealInput{
		Description: "banana",
		MealType:    "snack",
		Estimate:    estimate(105, 1.3, 27, 0.4),
	})
	assert.NoError(t, err)
	assert.False(t, meal.AteAt.Before(before))
	assert.False(t, meal.AteAt.After(time.Now()))
}

func TestCreateMealValidation(t *testing.T) {
	meals, _, user := newMealFixture(t)

	_, err := meals.CreateMeal(context.Background(), user.ID, CreateMealInput{
		Description: "  ",
		Estimate:    estimate(10, 1, 1, 1),
	})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = meals.CreateMeal(context.Background(), user.ID, CreateMealInput{
		Description: "toast",
		MealType:    "brunch",
		Estimate:    estimate(10, 1, 1, 1),
	})
	assert.ErrorAs(t, err, &vErr)
}

func TestMealRoundTripKeepsMacros(t *testing.T) {
	meals, _, user := newMealFixture(t)
	ctx := context.Background()

	fiber := 3.7
	_, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
		Description: "oatmeal with berries",
		MealType:    "breakfast",
		Estimate: NutritionEstimate{
			Calories: 312.48, Protein: 11.06, Carbs: 54.91, Fats: 6.33,
			Fiber: &fiber, Confidence: "medium",
		},
	})
	assert.NoError(t, err)

	got, err := meals.ListMeals(ctx, user.ID, MealFilters{})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 312.48, got[0].Calories)
	assert.Equal(t, 11.06, got[0].Protein)
	assert.Equal(t, 54.91, got[0].Carbs)
	assert.Equal(t, 6.33, got[0].Fats)
	assert.Equal(t, 3.7, *got[0].Fiber)
}

func TestListMealsFiltersAndOrder(t *testing.T) {
	meals, _, user := newMealFixture(t)
	ctx := context.Background()

	d1 := time.Date(2026, 5, 2, 8, 0, 0, 0, time.Local)
	d2 := time.Date(2026, 5, 2, 19, 0, 0, 0, time.Local)
	d3 := time.Date(2026, 5, 3, 8, 0, 0, 0, time.Local)

	for _, m := range []struct {
		desc string
		typ  string
		at   time.Time
	}{
		{"eggs", "breakfast", d1},
		{"pasta", "dinner", d2},
		{"yogurt", "breakfast", d3},
	} {
		_, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
			Description: m.desc, MealType: m.typ, AteAt: m.at, Estimate: estimate(100, 5, 10, 3),
		})
		assert.NoError(t, err)
	}

	all, err := meals.ListMeals(ctx, user.ID, MealFilters{})
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "yogurt", all[0].Description) // newest first
	assert.Equal(t, "pasta", all[1].Description)

	may2 := d1
	byDate, err := meals.ListMeals(ctx, user.ID, MealFilters{Date: &may2})
	assert.NoError(t, err)
	assert.Len(t, byDate, 2)

	byType, err := meals.ListMeals(ctx, user.ID, MealFilters{Date: &may2, MealType: "breakfast"})
	assert.NoError(t, err)
	assert.Len(t, byType, 1)
	assert.Equal(t, "eggs", byType[0].Description)
}

func TestUpdateMealMovesAcrossDates(t *testing.T) {
	meals, summary, user := newMealFixture(t)
	ctx := context.Background()

	oldDay := time.Date(2026, 5, 2, 12, 0, 0, 0, time.Local)
	newDay := time.Date(2026, 5, 3, 12, 0, 0, 0, time.Local)

	meal, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
		Description: "burrito", MealType: "lunch", AteAt: oldDay, Estimate: estimate(700, 30, 80, 25),
	})
	assert.NoError(t, err)

	newEst := estimate(650, 28, 75, 22)
	_, err = meals.UpdateMeal(ctx, user.ID, meal.ID, MealPatch{
		AteAt:    &newDay,
		Estimate: &newEst,
	})
	assert.NoError(t, err)

	oldView, err := summary.GetSummary(ctx, user.ID, oldDay)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, oldView.TotalCalories)

	newView, err := summary.GetSummary(ctx, user.ID, newDay)
	assert.NoError(t, err)
	assert.Equal(t, 650.0, newView.TotalCalories)
	assert.Equal(t, 28.0, newView.TotalProtein)
}

func TestDeleteMealReturnsSummaryToZero(t *testing.T) {
	meals, summary, user := newMealFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 5, 2, 12, 0, 0, 0, time.Local)
	meal, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
		Description: "pizza slice", MealType: "dinner", AteAt: day, Estimate: estimate(500, 20, 55, 22),
	})
	assert.NoError(t, err)

	assert.NoError(t, meals.DeleteMeal(ctx, user.ID, meal.ID))

	view, err := summary.GetSummary(ctx, user.ID, day)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, view.TotalCalories)
	assert.Equal(t, 2000.0, view.Remaining)

	// row survives as a zeroed summary, it is not deleted
	var count int64
	assert.NoError(t, summary.db.Model(&models.DailySummary{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSummaryMatchesMealsAfterMutationSequence(t *testing.T) {
	meals, summary, user := newMealFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.Local)

	m1, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
		Description: "eggs", MealType: "breakfast", AteAt: day.Add(8 * time.Hour), Estimate: estimate(210, 18, 2, 14),
	})
	assert.NoError(t, err)
	m2, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
		Description: "salad", MealType: "lunch", AteAt: day.Add(13 * time.Hour), Estimate: estimate(340, 12, 20, 24),
	})
	assert.NoError(t, err)

	bigger := estimate(420, 15, 25, 30)
	_, err = meals.UpdateMeal(ctx, user.ID, m2.ID, MealPatch{Estimate: &bigger})
	assert.NoError(t, err)
	assert.NoError(t, meals.DeleteMeal(ctx, user.ID, m1.ID))

	remaining, err := meals.ListMeals(ctx, user.ID, MealFilters{Date: &day})
	assert.NoError(t, err)

	var cals, prot float64
	for _, m := range remaining {
		cals += m.Calories
		prot += m.Protein
	}

	view, err := summary.GetSummary(ctx, user.ID, day)
	assert.NoError(t, err)
	assert.Equal(t, cals, view.TotalCalories)
	assert.Equal(t, prot, view.TotalProtein)
}

func TestGetMealOwnedOnly(t *testing.T) {
	meals, _, user := newMealFixture(t)
	ctx := context.Background()

	created, err := meals.CreateMeal(ctx, user.ID, CreateMealInput{
		Description: "oatmeal",
		MealType:    "breakfast",
		Estimate:    estimate(300, 10, 54, 6),
	})
	assert.NoError(t, err)

	got, err := meals.GetMeal(ctx, user.ID, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "oatmeal", got.Description)
	assert.Equal(t, 300.0, got.Calories)

	_, err = meals.GetMeal(ctx, user.ID+1, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMealNotFound(t *testing.T) {
	meals, _, user := newMealFixture(t)
	ctx := context.Background()

	_, err := meals.UpdateMeal(ctx, user.ID, 12345, MealPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, meals.DeleteMeal(ctx, user.ID, 12345), ErrNotFound)

	// another user's meal is invisible
	other := &models.User{Email: "other@example.com", Password: "x", TargetCalories: 1800}
	assert.NoError(t, meals.db.Create(other).Error)
	meal, err := meals.CreateMeal(ctx, other.ID, CreateMealInput{
		Description: "their lunch", Estimate: estimate(400, 10, 40, 15),
	})
	assert.NoError(t, err)
	assert.ErrorIs(t, meals.DeleteMeal(ctx, user.ID, meal.ID), ErrNotFound)
}
