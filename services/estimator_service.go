package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	estimateCacheTTL = 7 * 24 * time.Hour
	draftTTL         = 24 * time.Hour
)

const estimatorSystemInstruction = `You are a nutrition expert. Estimate the nutrition facts for the food the user describes.
Respond with ONLY a JSON object containing:
- "calories" (kcal), "protein", "carbs", "fats" (grams) — all required numbers
- optional numbers "fiber" (g), "sugar" (g), "sodium" (mg)
- "confidence": one of "high", "medium", "low"
- optional free-text "notes"
No markdown, no code blocks, no explanations.`

// EstimatorService turns a free-text food description into a structured
// macro estimate via an external chat-completions provider.
type EstimatorService struct {
	client *http.Client
	apiKey string
	apiURL string
	model  string
	redis  *redis.Client // nil disables the cache and the draft store
}

func NewEstimatorService(rdb *redis.Client) *EstimatorService {
	apiURL := os.Getenv("LLM_API_URL")
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "deepseek-chat"
	}
	return &EstimatorService{
		client: &http.Client{Timeout: 15 * time.Second},
		apiKey: os.Getenv("LLM_API_KEY"),
		apiURL: apiURL,
		model:  model,
		redis:  rdb,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NutritionEstimate is the schema-validated reply. Macro values are
// stored verbatim on the Meal when the user confirms.
type NutritionEstimate struct {
	Calories   float64  `json:"calories"`
	Protein    float64  `json:"protein"`
	Carbs      float64  `json:"carbs"`
	Fats       float64  `json:"fats"`
	Fiber      *float64 `json:"fiber,omitempty"`
	Sugar      *float64 `json:"sugar,omitempty"`
	Sodium     *float64 `json:"sodium,omitempty"`
	Confidence string   `json:"confidence"`
	Notes      string   `json:"notes,omitempty"`
}

// Estimate builds the prompt, calls the provider and validates the reply.
// The raw reply content is returned alongside so it can be retained on
// the Meal for audit. A malformed reply is retried once with the same
// prompt before being surfaced.
func (s *EstimatorService) Estimate(ctx context.Context, description, quantity string) (*NutritionEstimate, json.RawMessage, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil, invalidInput("description is required")
	}

	if est, raw, ok := s.cacheGet(ctx, description, quantity); ok {
		return est, raw, nil
	}

	prompt := buildEstimatePrompt(description, quantity)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		content, err := s.complete(ctx, estimatorSystemInstruction, prompt)
		if err != nil {
			return nil, nil, err
		}
		est, err := parseEstimate(content)
		if err != nil {
			// one retry with the identical prompt, per the recovery policy
			lastErr = err
			continue
		}
		raw := json.RawMessage(stripFences(content))
		s.cacheSet(ctx, description, quantity, est, raw)
		return est, raw, nil
	}
	return nil, nil, lastErr
}

func buildEstimatePrompt(description, quantity string) string {
	if strings.TrimSpace(quantity) != "" {
		return fmt.Sprintf("Estimate the nutrition facts for: %s (quantity: %s)", description, quantity)
	}
	return fmt.Sprintf("Estimate the nutrition facts for: %s", description)
}

// complete performs one chat-completions round trip and returns the first
// candidate's content. Shared with the insights generator.
func (s *EstimatorService) complete(ctx context.Context, system, prompt string) (string, error) {
	body := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   512,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", upstreamErr("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstreamErr("failed to read provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", upstreamErr("provider error %d: %s", resp.StatusCode, string(respBytes))
	}

	var cr chatResponse
	if err := json.Unmarshal(respBytes, &cr); err != nil {
		return "", malformedErr("failed to decode provider envelope: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", malformedErr("provider returned no candidates")
	}
	return cr.Choices[0].Message.Content, nil
}

// estimatePayload mirrors NutritionEstimate with pointers on the required
// fields so absence can be told apart from zero.
type estimatePayload struct {
	Calories   *float64 `json:"calories"`
	Protein    *float64 `json:"protein"`
	Carbs      *float64 `json:"carbs"`
	Fats       *float64 `json:"fats"`
	Fiber      *float64 `json:"fiber"`
	Sugar      *float64 `json:"sugar"`
	Sodium     *float64 `json:"sodium"`
	Confidence string   `json:"confidence"`
	Notes      string   `json:"notes"`
}

func parseEstimate(content string) (*NutritionEstimate, error) {
	cleaned := stripFences(content)

	var p estimatePayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return nil, malformedErr("reply is not valid JSON: %w", err)
	}

	required := map[string]*float64{
		"calories": p.Calories,
		"protein":  p.Protein,
		"carbs":    p.Carbs,
		"fats":     p.Fats,
	}
	for name, v := range required {
		if v == nil {
			return nil, malformedErr("reply missing required field %q", name)
		}
		if *v < 0 {
			return nil, malformedErr("field %q must be non-negative, got %v", name, *v)
		}
	}
	for name, v := range map[string]*float64{"fiber": p.Fiber, "sugar": p.Sugar, "sodium": p.Sodium} {
		if v != nil && *v < 0 {
			return nil, malformedErr("field %q must be non-negative, got %v", name, *v)
		}
	}

	conf := strings.ToLower(strings.TrimSpace(p.Confidence))
	switch conf {
	case "high", "medium", "low":
	default:
		return nil, malformedErr("invalid confidence %q", p.Confidence)
	}

	return &NutritionEstimate{
		Calories:   *p.Calories,
		Protein:    *p.Protein,
		Carbs:      *p.Carbs,
		Fats:       *p.Fats,
		Fiber:      p.Fiber,
		Sugar:      p.Sugar,
		Sodium:     p.Sodium,
		Confidence: conf,
		Notes:      strings.TrimSpace(p.Notes),
	}, nil
}

// stripFences removes a markdown code fence some providers wrap JSON in.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

// ---------- advisory cache ----------

type cachedEstimate struct {
	Estimate NutritionEstimate `json:"estimate"`
	Raw      json.RawMessage   `json:"raw"`
}

func estimateCacheKey(description, quantity string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(description), " "))
	q := strings.ToLower(strings.Join(strings.Fields(quantity), " "))
	return fmt.Sprintf("nutrition:estimate:%s|%s", norm, q)
}

func (s *EstimatorService) cacheGet(ctx context.Context, description, quantity string) (*NutritionEstimate, json.RawMessage, bool) {
	if s.redis == nil {
		return nil, nil, false
	}
	data, err := s.redis.Get(ctx, estimateCacheKey(description, quantity)).Bytes()
	if err != nil {
		return nil, nil, false
	}
	var c cachedEstimate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, nil, false
	}
	return &c.Estimate, c.Raw, true
}

func (s *EstimatorService) cacheSet(ctx context.Context, description, quantity string, est *NutritionEstimate, raw json.RawMessage) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(cachedEstimate{Estimate: *est, Raw: raw})
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, estimateCacheKey(description, quantity), data, estimateCacheTTL).Err(); err != nil {
		log.Printf("estimate cache write failed: %v", err)
	}
}

// ---------- analyze → confirm drafts ----------

// EstimateDraft is a pending estimate handed back from POST /nutrition/analyze.
// The client confirms by sending the id to POST /meals, which carries the
// validated macros and the raw reply onto the stored Meal.
type EstimateDraft struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Quantity    string            `json:"quantity,omitempty"`
	Estimate    NutritionEstimate `json:"estimate"`
	Raw         json.RawMessage   `json:"raw"`
	CreatedAt   time.Time         `json:"created_at"`
}

// SaveDraft stores the draft for 24h and returns its id. With no redis
// configured it returns "" and the client falls back to sending macros
// explicitly.
func (s *EstimatorService) SaveDraft(ctx context.Context, draft *EstimateDraft) string {
	if s.redis == nil {
		return ""
	}
	draft.ID = uuid.New().String()
	draft.CreatedAt = time.Now()

	data, err := json.Marshal(draft)
	if err != nil {
		return ""
	}
	if err := s.redis.Set(ctx, "nutrition:draft:"+draft.ID, data, draftTTL).Err(); err != nil {
		log.Printf("draft write failed: %v", err)
		return ""
	}
	return draft.ID
}

func (s *EstimatorService) GetDraft(ctx context.Context, id string) (*EstimateDraft, error) {
	if s.redis == nil {
		return nil, ErrNotFound
	}
	data, err := s.redis.Get(ctx, "nutrition:draft:"+id).Bytes()
	if err != nil {
		return nil, ErrNotFound
	}
	var draft EstimateDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}
