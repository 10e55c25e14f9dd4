package services

import (
	"context"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ProfileInput is a partial update; nil fields are left untouched.
type ProfileInput struct {
	FullName      *string  `json:"full_name"`
	Age           *int     `json:"age"`
	Gender        *string  `json:"gender"`
	HeightCm      *float64 `json:"height_cm"`
	WeightKg      *float64 `json:"weight_kg"`
	ActivityLevel *string  `json:"activity_level"`
	Goal          *string  `json:"goal"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (map[string]interface{}, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return profileResponse(&user), nil
}

// UpdateProfile mutates biometrics/activity/goal and recomputes the
// calorie target whenever any of them changed.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (map[string]interface{}, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}

	targetInputsChanged := false

	if in.FullName != nil && *in.FullName != "" {
		user.FullName = *in.FullName
	}
	if in.Age != nil {
		user.Age = *in.Age
		targetInputsChanged = true
	}
	if in.Gender != nil && *in.Gender != "" {
		user.Gender = *in.Gender
		targetInputsChanged = true
	}
	if in.HeightCm != nil {
		user.HeightCm = *in.HeightCm
		targetInputsChanged = true
	}
	if in.WeightKg != nil {
		user.WeightKg = *in.WeightKg
		targetInputsChanged = true
	}
	if in.ActivityLevel != nil && *in.ActivityLevel != "" {
		user.ActivityLevel = *in.ActivityLevel
		targetInputsChanged = true
	}
	if in.Goal != nil && *in.Goal != "" {
		user.Goal = *in.Goal
		targetInputsChanged = true
	}

	if targetInputsChanged {
		if err := recomputeTarget(&user); err != nil {
			return nil, invalidInput("%v", err)
		}
	}

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return profileResponse(&user), nil
}

func recomputeTarget(u *models.User) error {
	bmr, err := utils.ComputeBMR(u.WeightKg, u.HeightCm, u.Age, u.Gender)
	if err != nil {
		return err
	}
	tdee := utils.ComputeTDEE(bmr, u.ActivityLevel)
	u.TargetCalories = utils.ComputeTargetCalories(tdee, u.Goal)
	return nil
}

func profileResponse(user *models.User) map[string]interface{} {
	out := map[string]interface{}{
		"id":              user.ID,
		"email":           user.Email,
		"full_name":       user.FullName,
		"age":             user.Age,
		"gender":          user.Gender,
		"height_cm":       user.HeightCm,
		"weight_kg":       user.WeightKg,
		"activity_level":  user.ActivityLevel,
		"goal":            user.Goal,
		"target_calories": user.TargetCalories,
	}
	if bmr, err := utils.ComputeBMR(user.WeightKg, user.HeightCm, user.Age, user.Gender); err == nil {
		out["bmr"] = bmr
		out["tdee"] = utils.ComputeTDEE(bmr, user.ActivityLevel)
	}
	return out
}
