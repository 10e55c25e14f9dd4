package services

import (
	"context"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

var goalStatuses = map[string]bool{"active": true, "completed": true, "paused": true}

type GoalInput struct {
	TargetWeightKg  float64    `json:"target_weight_kg"`
	CurrentWeightKg float64    `json:"current_weight_kg"`
	TargetDate      *time.Time `json:"target_date"`
	Status          string     `json:"status"`
}

func (s *GoalService) CreateGoal(ctx context.Context, userID uint, in GoalInput) (*models.Goal, error) {
	status := in.Status
	if status == "" {
		status = "active"
	}
	if !goalStatuses[status] {
		return nil, invalidInput("status must be active, completed or paused")
	}
	if in.TargetWeightKg <= 0 || in.CurrentWeightKg <= 0 {
		return nil, invalidInput("target and current weight must be positive")
	}

	goal := models.Goal{
		UserID:          userID,
		TargetWeightKg:  in.TargetWeightKg,
		CurrentWeightKg: in.CurrentWeightKg,
		TargetDate:      in.TargetDate,
		Status:          status,
	}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) ListGoals(ctx context.Context, userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, err
}

type GoalPatch struct {
	TargetWeightKg  *float64   `json:"target_weight_kg"`
	CurrentWeightKg *float64   `json:"current_weight_kg"`
	TargetDate      *time.Time `json:"target_date"`
	Status          *string    `json:"status"`
}

// UpdateGoal applies user-driven changes; status transitions are free
// form within the enum, there is no automatic expiry.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID uint, patch GoalPatch) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error; err != nil {
		return nil, notFound(err)
	}

	if patch.Status != nil {
		if !goalStatuses[*patch.Status] {
			return nil, invalidInput("status must be active, completed or paused")
		}
		goal.Status = *patch.Status
	}
	if patch.TargetWeightKg != nil && *patch.TargetWeightKg > 0 {
		goal.TargetWeightKg = *patch.TargetWeightKg
	}
	if patch.CurrentWeightKg != nil && *patch.CurrentWeightKg > 0 {
		goal.CurrentWeightKg = *patch.CurrentWeightKg
	}
	if patch.TargetDate != nil {
		goal.TargetDate = patch.TargetDate
	}

	if err := s.db.WithContext(ctx).Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.Goal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
