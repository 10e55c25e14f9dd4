package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals     *services.MealService
	Estimator *services.EstimatorService
}

func NewMealController(meals *services.MealService, est *services.EstimatorService) *MealController {
	return &MealController{Meals: meals, Estimator: est}
}

type createMealRequest struct {
	Description string                      `json:"description"`
	MealType    string                      `json:"meal_type"`
	AteAt       time.Time                   `json:"ate_at"`
	AnalysisID  string                      `json:"analysis_id"`
	Macros      *services.NutritionEstimate `json:"macros"`
	Raw         json.RawMessage             `json:"raw"`
}

// CreateMeal accepts either a confirmed analysis_id from POST
// /nutrition/analyze or explicit macros.
func (h *MealController) CreateMeal(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.CreateMealInput{
		Description: body.Description,
		MealType:    body.MealType,
		AteAt:       body.AteAt,
	}

	switch {
	case body.AnalysisID != "":
		draft, err := h.Estimator.GetDraft(c.Request.Context(), body.AnalysisID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "analysis not found or expired"})
			return
		}
		in.Estimate = draft.Estimate
		in.Raw = draft.Raw
		if in.Description == "" {
			in.Description = draft.Description
		}
	case body.Macros != nil:
		in.Estimate = *body.Macros
		in.Raw = body.Raw
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either analysis_id or macros is required"})
		return
	}

	meal, err := h.Meals.CreateMeal(c.Request.Context(), userID, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (h *MealController) ListMeals(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	filters := services.MealFilters{MealType: c.Query("mealType")}
	if v := c.Query("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		filters.Date = &d
	}

	meals, err := h.Meals.ListMeals(c.Request.Context(), userID, filters)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealController) GetMeal(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	mealID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	meal, err := h.Meals.GetMeal(c.Request.Context(), userID, uint(mealID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealController) UpdateMeal(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	mealID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	var patch services.MealPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := h.Meals.UpdateMeal(c.Request.Context(), userID, uint(mealID), patch)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealController) DeleteMeal(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	mealID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	if err := h.Meals.DeleteMeal(c.Request.Context(), userID, uint(mealID)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
