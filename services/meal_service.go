// services/meal_service.go
package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MealService persists individual meal entries and keeps the daily
// summaries in step with every mutation.
type MealService struct {
	db      *gorm.DB
	summary *SummaryService
	hub     *RealtimeHub // optional
}

func NewMealService(db *gorm.DB, summary *SummaryService, hub *RealtimeHub) *MealService {
	return &MealService{db: db, summary: summary, hub: hub}
}

type CreateMealInput struct {
	Description string
	MealType    string
	AteAt       time.Time // zero → now
	Estimate    NutritionEstimate
	Raw         json.RawMessage
}

type MealFilters struct {
	Date     *time.Time
	MealType string
}

// MealPatch carries only the fields being changed. Concurrent edits to
// the same meal resolve last-write-wins.
type MealPatch struct {
	Description *string            `json:"description"`
	MealType    *string            `json:"meal_type"`
	AteAt       *time.Time         `json:"ate_at"`
	Estimate    *NutritionEstimate `json:"estimate"`
	Raw         json.RawMessage    `json:"raw"`
}

var mealTypes = map[string]bool{"breakfast": true, "lunch": true, "dinner": true, "snack": true}

// CreateMeal stores the macros verbatim from the estimator output and
// applies the day's summary delta in the same transaction; a failed
// summary update rolls the meal write back.
func (s *MealService) CreateMeal(ctx context.Context, userID uint, in CreateMealInput) (*models.Meal, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalidInput("description is required")
	}
	if in.MealType != "" && !mealTypes[in.MealType] {
		return nil, invalidInput("meal_type must be breakfast, lunch, dinner or snack")
	}

	ateAt := in.AteAt
	if ateAt.IsZero() {
		ateAt = time.Now()
	}

	meal := &models.Meal{
		UserID:      userID,
		Description: strings.TrimSpace(in.Description),
		MealType:    in.MealType,
		AteAt:       ateAt,
		Calories:    in.Estimate.Calories,
		Protein:     in.Estimate.Protein,
		Carbs:       in.Estimate.Carbs,
		Fats:        in.Estimate.Fats,
		Fiber:       in.Estimate.Fiber,
		Sugar:       in.Estimate.Sugar,
		Sodium:      in.Estimate.Sodium,
		Confidence:  in.Estimate.Confidence,
		Notes:       in.Estimate.Notes,
		RawEstimate: datatypes.JSON(in.Raw),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meal).Error; err != nil {
			return err
		}
		return s.summary.ApplyDelta(tx, userID, meal.AteAt, mealDelta(meal))
	})
	if err != nil {
		return nil, err
	}

	s.notifySummary(ctx, userID, meal.AteAt)
	return meal, nil
}

func (s *MealService) ListMeals(ctx context.Context, userID uint, f MealFilters) ([]models.Meal, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ate_at DESC")

	if f.Date != nil {
		start := dayStart(*f.Date)
		q = q.Where("ate_at >= ? AND ate_at < ?", start, start.Add(24*time.Hour))
	}
	if f.MealType != "" {
		q = q.Where("meal_type = ?", f.MealType)
	}

	var meals []models.Meal
	err := q.Find(&meals).Error
	return meals, err
}

func (s *MealService) GetMeal(ctx context.Context, userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &meal, nil
}

// UpdateMeal applies the patch and recomputes the summaries for both the
// old date and the new one when the meal moved across days.
func (s *MealService) UpdateMeal(ctx context.Context, userID, mealID uint, patch MealPatch) (*models.Meal, error) {
	if patch.MealType != nil && *patch.MealType != "" && !mealTypes[*patch.MealType] {
		return nil, invalidInput("meal_type must be breakfast, lunch, dinner or snack")
	}

	var meal models.Meal
	var oldDate time.Time
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error; err != nil {
			return notFound(err)
		}

		oldDate = meal.AteAt
		oldDelta := mealDelta(&meal)

		if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
			meal.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.MealType != nil && *patch.MealType != "" {
			meal.MealType = *patch.MealType
		}
		if patch.AteAt != nil && !patch.AteAt.IsZero() {
			meal.AteAt = *patch.AteAt
		}
		if patch.Estimate != nil {
			meal.Calories = patch.Estimate.Calories
			meal.Protein = patch.Estimate.Protein
			meal.Carbs = patch.Estimate.Carbs
			meal.Fats = patch.Estimate.Fats
			meal.Fiber = patch.Estimate.Fiber
			meal.Sugar = patch.Estimate.Sugar
			meal.Sodium = patch.Estimate.Sodium
			meal.Confidence = patch.Estimate.Confidence
			meal.Notes = patch.Estimate.Notes
		}
		if len(patch.Raw) > 0 {
			meal.RawEstimate = datatypes.JSON(patch.Raw)
		}

		if err := tx.Save(&meal).Error; err != nil {
			return err
		}
		if err := s.summary.ApplyDelta(tx, userID, oldDate, oldDelta.negate()); err != nil {
			return err
		}
		return s.summary.ApplyDelta(tx, userID, meal.AteAt, mealDelta(&meal))
	})
	if err != nil {
		return nil, err
	}

	s.notifySummary(ctx, userID, oldDate, meal.AteAt)
	return &meal, nil
}

func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID uint) error {
	var meal models.Meal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&meal).Error; err != nil {
			return err
		}
		return s.summary.ApplyDelta(tx, userID, meal.AteAt, mealDelta(&meal).negate())
	})
	if err != nil {
		return err
	}

	s.notifySummary(ctx, userID, meal.AteAt)
	return nil
}

func mealDelta(m *models.Meal) MacroDelta {
	return MacroDelta{Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fats: m.Fats}
}

// notifySummary pushes the fresh summary for each affected day to the
// user's websocket clients. Best effort only.
func (s *MealService) notifySummary(ctx context.Context, userID uint, dates ...time.Time) {
	if s.hub == nil {
		return
	}
	seen := map[string]bool{}
	for _, d := range dates {
		key := dayStart(d).Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true

		view, err := s.summary.GetSummary(ctx, userID, d)
		if err != nil {
			log.Printf("summary broadcast skipped: %v", err)
			continue
		}
		s.hub.BroadcastSummary(userID, view)
	}
}
