package models

import (
	"time"

	"gorm.io/gorm"
)

// DailySummary holds the running macro totals for one (user, calendar day).
// Exactly one row per pair; updated atomically with every meal mutation.
type DailySummary struct {
	gorm.Model
	UserID uint      `gorm:"uniqueIndex:idx_user_date;not null" json:"user_id"`
	Date   time.Time `gorm:"uniqueIndex:idx_user_date;not null" json:"date"`

	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`

	// Calorie target in effect when the row was created; never rewritten
	// by later profile changes.
	GoalCalories int `json:"goal_calories"`
}
