package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBMR(t *testing.T) {
	bmr, err := ComputeBMR(80, 180, 30, "male")
	assert.NoError(t, err)
	assert.Equal(t, 10*80.0+6.25*180-5*30+5, bmr)

	bmr, err = ComputeBMR(60, 165, 25, "female")
	assert.NoError(t, err)
	assert.Equal(t, 10*60.0+6.25*165-5*25-161, bmr)

	// non-male-coded inputs use the −161 constant
	bmrOther, err := ComputeBMR(60, 165, 25, "")
	assert.NoError(t, err)
	assert.Equal(t, bmr, bmrOther)
}

func TestComputeBMRRejectsInvalidInput(t *testing.T) {
	_, err := ComputeBMR(0, 180, 30, "male")
	assert.Error(t, err)

	_, err = ComputeBMR(80, -5, 30, "male")
	assert.Error(t, err)

	_, err = ComputeBMR(80, 180, 0, "male")
	assert.Error(t, err)

	_, err = ComputeBMR(900, 180, 30, "male")
	assert.Error(t, err)
}

func TestComputeTDEE(t *testing.T) {
	// moderate ×1.55: 1792.5 × 1.55 = 2778.375 → 2778
	assert.Equal(t, 2778, ComputeTDEE(1792.5, "moderate"))

	assert.Equal(t, 2151, ComputeTDEE(1792.5, "sedentary"))
	assert.Equal(t, 3406, ComputeTDEE(1792.5, "very_active"))

	// unknown levels default to the light factor
	assert.Equal(t, ComputeTDEE(1792.5, "light"), ComputeTDEE(1792.5, "couch"))
}

func TestComputeTargetCalories(t *testing.T) {
	assert.Equal(t, 2278, ComputeTargetCalories(2778, "lose"))
	assert.Equal(t, 3278, ComputeTargetCalories(2778, "gain"))
	assert.Equal(t, 2778, ComputeTargetCalories(2778, "maintain"))

	// unknown goal keeps maintenance
	assert.Equal(t, 2778, ComputeTargetCalories(2778, "bulk"))
}

func TestTargetChainDeterministic(t *testing.T) {
	chain := func() int {
		bmr, err := ComputeBMR(72.5, 168, 41, "female")
		assert.NoError(t, err)
		return ComputeTargetCalories(ComputeTDEE(bmr, "active"), "lose")
	}
	first := chain()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, chain())
	}
	// BMR 1409 × 1.725 = 2430.525 → 2431, minus 500
	assert.Equal(t, 1931, first)
}
