package utils

import (
	"errors"
	"math"
	"strings"
)

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

var goalOffsets = map[string]float64{
	"lose":     -500,
	"gain":     500,
	"maintain": 0,
}

// ComputeBMR expects weight in kilograms and height in centimeters and
// applies the Mifflin–St Jeor formula. The result is not rounded.
// Implausible inputs are rejected rather than clamped.
func ComputeBMR(weightKg, heightCm float64, age int, gender string) (float64, error) {
	if weightKg <= 0 || heightCm <= 0 || age <= 0 {
		return 0, errors.New("weight, height and age must be positive")
	}
	// Sanity checks to avoid garbage input
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if strings.EqualFold(strings.TrimSpace(gender), "male") {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr, nil
}

// ComputeTDEE multiplies BMR by the activity factor, rounded to the
// nearest kcal. Unknown levels fall back to the "light" factor.
func ComputeTDEE(bmr float64, activityLevel string) int {
	m, ok := activityMultipliers[activityLevel]
	if !ok {
		m = 1.375
	}
	return int(math.Round(bmr * m))
}

// ComputeTargetCalories applies the goal offset. Unknown goals keep the
// maintenance value.
func ComputeTargetCalories(tdee int, goal string) int {
	return int(math.Round(float64(tdee) + goalOffsets[goal]))
}
