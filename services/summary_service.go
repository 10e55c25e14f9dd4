package services

import (
	"context"
	"errors"
	"math"
	"time"

	"backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryService maintains the one-row-per-(user,date) running totals.
type SummaryService struct {
	db *gorm.DB
}

func NewSummaryService(db *gorm.DB) *SummaryService {
	return &SummaryService{db: db}
}

// MacroDelta is the signed contribution of one meal mutation.
type MacroDelta struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
}

func (d MacroDelta) negate() MacroDelta {
	return MacroDelta{Calories: -d.Calories, Protein: -d.Protein, Carbs: -d.Carbs, Fats: -d.Fats}
}

// ApplyDelta upserts the summary row for (userID, date) with a single
// atomic increment. It runs on the caller's transaction handle so the
// triggering meal write and the summary update commit or roll back
// together. On first insert the row is seeded with the user's current
// calorie target; the snapshot is never rewritten afterwards.
func (s *SummaryService) ApplyDelta(tx *gorm.DB, userID uint, date time.Time, d MacroDelta) error {
	day := dayStart(date)

	var user models.User
	if err := tx.Select("target_calories").First(&user, userID).Error; err != nil {
		return notFound(err)
	}

	row := models.DailySummary{
		UserID:        userID,
		Date:          day,
		TotalCalories: d.Calories,
		TotalProtein:  d.Protein,
		TotalCarbs:    d.Carbs,
		TotalFats:     d.Fats,
		GoalCalories:  user.TargetCalories,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_calories": gorm.Expr("total_calories + ?", d.Calories),
			"total_protein":  gorm.Expr("total_protein + ?", d.Protein),
			"total_carbs":    gorm.Expr("total_carbs + ?", d.Carbs),
			"total_fats":     gorm.Expr("total_fats + ?", d.Fats),
			"updated_at":     time.Now(),
		}),
	}).Create(&row).Error
}

// SummaryView is what the dashboard reads. Remaining may go negative
// (over goal is a valid state); percentage is clamped for display.
type SummaryView struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
	GoalCalories  int     `json:"goal_calories"`
	Remaining     float64 `json:"remaining"`
	Percentage    float64 `json:"percentage"`
}

// GetSummary reads the day's totals. A date with no row yields zeroed
// totals against the user's current target.
func (s *SummaryService) GetSummary(ctx context.Context, userID uint, date time.Time) (*SummaryView, error) {
	day := dayStart(date)

	var row models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var user models.User
		if err := s.db.WithContext(ctx).Select("target_calories").First(&user, userID).Error; err != nil {
			return nil, notFound(err)
		}
		row = models.DailySummary{UserID: userID, Date: day, GoalCalories: user.TargetCalories}
	} else if err != nil {
		return nil, err
	}

	return summaryView(&row), nil
}

// ListRange returns the summaries with dates in [from, to], ascending.
func (s *SummaryService) ListRange(ctx context.Context, userID uint, from, to time.Time) ([]models.DailySummary, error) {
	var rows []models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, dayStart(from), dayStart(to)).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func summaryView(row *models.DailySummary) *SummaryView {
	goal := float64(row.GoalCalories)
	v := &SummaryView{
		Date:          row.Date.Format("2006-01-02"),
		TotalCalories: row.TotalCalories,
		TotalProtein:  row.TotalProtein,
		TotalCarbs:    row.TotalCarbs,
		TotalFats:     row.TotalFats,
		GoalCalories:  row.GoalCalories,
		Remaining:     goal - row.TotalCalories,
	}
	if goal > 0 {
		v.Percentage = round2(math.Min(100, row.TotalCalories/goal*100))
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func dayStart(t time.Time) time.Time {
	tt := t.In(time.Local)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.Local)
}
