package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `json:"full_name"`

	Age           int     `json:"age"`
	Gender        string  `json:"gender"` // "male" | "female" | other
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"` // sedentary|light|moderate|active|very_active
	Goal          string  `json:"goal"`           // lose|gain|maintain

	// Recomputed whenever biometrics or goal change.
	TargetCalories int `json:"target_calories"`

	Meals          []Meal         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Goals          []Goal         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DailySummaries []DailySummary `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
