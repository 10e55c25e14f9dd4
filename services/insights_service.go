package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

const minMealsForInsights = 5

const insightsSystemInstruction = `You are a nutrition expert reviewing a week of food logs.
Respond with ONLY a JSON array of 3 to 5 recommendation objects, each with:
- "title": short headline
- "description": one or two practical sentences
- "category": one of "calories", "macros", "timing", "variety"
- "priority": one of "high", "medium", "low"
No markdown, no code blocks, no explanations.`

type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// InsightsResult is not an error when there is too little history; the
// gate simply reports it with an empty recommendation list.
type InsightsResult struct {
	NotEnoughData   bool             `json:"not_enough_data"`
	MealsLogged     int64            `json:"meals_logged"`
	Recommendations []Recommendation `json:"recommendations"`
}

// completionProvider is the one outbound capability insights needs; the
// estimator satisfies it.
type completionProvider interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

type InsightsService struct {
	db  *gorm.DB
	llm completionProvider
}

func NewInsightsService(db *gorm.DB, llm completionProvider) *InsightsService {
	return &InsightsService{db: db, llm: llm}
}

// Generate summarizes the last 7 days and asks the provider for 3–5
// structured recommendations. With fewer than 5 meals logged overall no
// upstream call is made.
func (s *InsightsService) Generate(ctx context.Context, userID uint) (*InsightsResult, error) {
	var mealCount int64
	if err := s.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("user_id = ?", userID).
		Count(&mealCount).Error; err != nil {
		return nil, err
	}
	if mealCount < minMealsForInsights {
		return &InsightsResult{
			NotEnoughData:   true,
			MealsLogged:     mealCount,
			Recommendations: []Recommendation{},
		}, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}

	now := time.Now()
	from := dayStart(now.AddDate(0, 0, -6))

	var summaries []models.DailySummary
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, from).
		Order("date ASC").
		Find(&summaries).Error; err != nil {
		return nil, err
	}

	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at >= ?", userID, from).
		Order("ate_at DESC").
		Limit(15).
		Find(&meals).Error; err != nil {
		return nil, err
	}

	prompt := buildInsightsPrompt(&user, summaries, meals)

	content, err := s.llm.complete(ctx, insightsSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}
	recs, err := parseRecommendations(content)
	if err != nil {
		return nil, err
	}

	return &InsightsResult{
		MealsLogged:     mealCount,
		Recommendations: recs,
	}, nil
}

func buildInsightsPrompt(user *models.User, summaries []models.DailySummary, meals []models.Meal) string {
	var cals, prot, carbs, fats float64
	for _, d := range summaries {
		cals += d.TotalCalories
		prot += d.TotalProtein
		carbs += d.TotalCarbs
		fats += d.TotalFats
	}
	days := len(summaries)
	if days == 0 {
		days = 1
	}

	var sb bytes.Buffer
	fmt.Fprintf(&sb, "Daily calorie target: %d kcal (goal: %s)\n", user.TargetCalories, user.Goal)
	fmt.Fprintf(&sb, "7-day averages over %d logged days: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat\n\n",
		len(summaries), cals/float64(days), prot/float64(days), carbs/float64(days), fats/float64(days))

	sb.WriteString("Recent meals:\n")
	for _, m := range meals {
		fmt.Fprintf(&sb, "- %s [%s] %s: %.0f kcal, %.0fg protein\n",
			m.AteAt.Format("Mon 15:04"), m.MealType, m.Description, m.Calories, m.Protein)
	}

	sb.WriteString("\nGive 3-5 recommendations to improve this diet.")
	return sb.String()
}

var (
	insightCategories = map[string]bool{"calories": true, "macros": true, "timing": true, "variety": true}
	insightPriorities = map[string]bool{"high": true, "medium": true, "low": true}
)

func parseRecommendations(content string) ([]Recommendation, error) {
	cleaned := stripFences(content)

	var recs []Recommendation
	if err := json.Unmarshal([]byte(cleaned), &recs); err != nil {
		// some providers wrap the array despite instructions
		var wrapped struct {
			Recommendations []Recommendation `json:"recommendations"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil || len(wrapped.Recommendations) == 0 {
			return nil, malformedErr("reply is not a recommendation list: %w", err)
		}
		recs = wrapped.Recommendations
	}

	if len(recs) == 0 {
		return nil, malformedErr("provider returned no recommendations")
	}
	if len(recs) > 5 {
		recs = recs[:5]
	}
	for i := range recs {
		recs[i].Category = strings.ToLower(strings.TrimSpace(recs[i].Category))
		recs[i].Priority = strings.ToLower(strings.TrimSpace(recs[i].Priority))
		if recs[i].Title == "" || recs[i].Description == "" {
			return nil, malformedErr("recommendation %d missing title or description", i)
		}
		if !insightCategories[recs[i].Category] {
			return nil, malformedErr("recommendation %d has invalid category %q", i, recs[i].Category)
		}
		if !insightPriorities[recs[i].Priority] {
			return nil, malformedErr("recommendation %d has invalid priority %q", i, recs[i].Priority)
		}
	}
	return recs, nil
}
