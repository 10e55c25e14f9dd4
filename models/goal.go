package models

import (
	"time"

	"gorm.io/gorm"
)

// Goal is a user-driven weight target; status transitions have no
// automatic expiry.
type Goal struct {
	gorm.Model
	UserID uint `gorm:"index;not null" json:"user_id"`

	TargetWeightKg  float64    `json:"target_weight_kg"`
	CurrentWeightKg float64    `json:"current_weight_kg"`
	TargetDate      *time.Time `json:"target_date,omitempty"`
	Status          string     `json:"status"` // active|completed|paused
}
