package controllers

import (
	"log"
	"net/http"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type NutritionController struct {
	Estimator *services.EstimatorService
	Summary   *services.SummaryService
	Insights  *services.InsightsService
}

func NewNutritionController(est *services.EstimatorService, sum *services.SummaryService, ins *services.InsightsService) *NutritionController {
	return &NutritionController{Estimator: est, Summary: sum, Insights: ins}
}

type analyzeRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity"`
}

// Analyze estimates macros for a free-text description. The estimate is
// also parked as a draft so POST /meals can confirm it by id.
func (h *NutritionController) Analyze(c *gin.Context) {
	if _, ok := userIDFromCtx(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est, raw, err := h.Estimator.Estimate(c.Request.Context(), body.Description, body.Quantity)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	draftID := h.Estimator.SaveDraft(c.Request.Context(), &services.EstimateDraft{
		Description: body.Description,
		Quantity:    body.Quantity,
		Estimate:    *est,
		Raw:         raw,
	})
	if draftID == "" {
		log.Println("estimate draft not stored, client must confirm with explicit macros")
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis_id": draftID,
		"estimate":    est,
	})
}

func (h *NutritionController) GetDailySummary(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date := time.Now()
	if v := c.Query("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = d
	}

	summary, err := h.Summary.GetSummary(c.Request.Context(), userID, date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetSummaryRange returns the stored day rows for a date range, defaulting
// to the trailing week. Days with no meals have no row.
func (h *NutritionController) GetSummaryRange(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	to := time.Now()
	from := to.AddDate(0, 0, -6)
	if v := c.Query("from"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		from = d
	}
	if v := c.Query("to"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		to = d
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}

	summaries, err := h.Summary.ListRange(c.Request.Context(), userID, from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *NutritionController) GetInsights(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	out, err := h.Insights.Generate(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
