package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// One Meal per logged food item, with the estimator's macro snapshot.
type Meal struct {
	gorm.Model
	UserID uint `gorm:"index;not null" json:"user_id"`

	Description string    `gorm:"not null" json:"description"` // original free text
	MealType    string    `json:"meal_type"`                   // breakfast|lunch|dinner|snack
	AteAt       time.Time `gorm:"index" json:"ate_at"`

	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fats     float64  `json:"fats"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`

	Confidence string `json:"confidence"` // high|medium|low
	Notes      string `json:"notes,omitempty"`

	// Raw estimator reply, kept for audit.
	RawEstimate datatypes.JSON `json:"raw_estimate,omitempty"`
}
