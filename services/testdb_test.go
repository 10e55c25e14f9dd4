package services

import (
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.Goal{},
		&models.DailySummary{},
	)
	assert.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, target int) *models.User {
	user := &models.User{
		Email:          "test@example.com",
		Password:       "x",
		FullName:       "Test User",
		Age:            30,
		Gender:         "male",
		HeightCm:       180,
		WeightKg:       80,
		ActivityLevel:  "moderate",
		Goal:           "lose",
		TargetCalories: target,
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}
