package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalLifecycle(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewGoalService(db)
	ctx := context.Background()

	target := time.Now().AddDate(0, 3, 0)
	goal, err := svc.CreateGoal(ctx, user.ID, GoalInput{
		TargetWeightKg:  72,
		CurrentWeightKg: 80,
		TargetDate:      &target,
	})
	require.NoError(t, err)
	assert.Equal(t, "active", goal.Status, "status defaults to active")

	goals, err := svc.ListGoals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)

	updated, err := svc.UpdateGoal(ctx, user.ID, goal.ID, GoalPatch{
		CurrentWeightKg: ptr(76.5),
		Status:          ptr("completed"),
	})
	require.NoError(t, err)
	assert.Equal(t, 76.5, updated.CurrentWeightKg)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, 72.0, updated.TargetWeightKg, "unpatched fields keep their value")

	require.NoError(t, svc.DeleteGoal(ctx, user.ID, goal.ID))
	goals, err = svc.ListGoals(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoalValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewGoalService(db)
	ctx := context.Background()

	var vErr *ValidationError

	_, err := svc.CreateGoal(ctx, user.ID, GoalInput{TargetWeightKg: 72, CurrentWeightKg: 80, Status: "abandoned"})
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.CreateGoal(ctx, user.ID, GoalInput{TargetWeightKg: 0, CurrentWeightKg: 80})
	assert.ErrorAs(t, err, &vErr)

	goal, err := svc.CreateGoal(ctx, user.ID, GoalInput{TargetWeightKg: 72, CurrentWeightKg: 80})
	require.NoError(t, err)

	_, err = svc.UpdateGoal(ctx, user.ID, goal.ID, GoalPatch{Status: ptr("abandoned")})
	assert.ErrorAs(t, err, &vErr)
}

func TestGoalOwnership(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, 2000)
	svc := NewGoalService(db)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, user.ID, GoalInput{TargetWeightKg: 72, CurrentWeightKg: 80})
	require.NoError(t, err)

	_, err = svc.UpdateGoal(ctx, user.ID+1, goal.ID, GoalPatch{Status: ptr("paused")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteGoal(ctx, user.ID+1, goal.ID), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteGoal(ctx, user.ID, 999), ErrNotFound)
}
