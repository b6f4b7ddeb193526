package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DecompositionBackend turns a dish name into its constituent ingredients.
type DecompositionBackend interface {
	Decompose(ctx context.Context, dishName string) ([]string, error)
}

const (
	decomposeSystemPrompt = "You are a culinary and food expert. Your task is to break down a dish " +
		"into its basic ingredients in list format."
	decomposeUserPrompt = "Break down the dish '%s' into individual ingredients. Return only the main " +
		"ingredients, without decorations and garnishes. Provide only a JSON array of strings, " +
		"without explanations or comments. For example: [\"rice\", \"salmon\", \"avocado\", \"cucumber\"]."
)

// OpenAIDecomposer calls the chat completions API for ingredient lists.
type OpenAIDecomposer struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func NewOpenAIDecomposer(apiKey, model string, timeout time.Duration) *OpenAIDecomposer {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
	}
	return &OpenAIDecomposer{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1",
		httpc:   &http.Client{Timeout: timeout, Transport: tr},
	}
}

// WithBaseURL overrides the API endpoint (tests point it at a local server).
func (o *OpenAIDecomposer) WithBaseURL(u string) *OpenAIDecomposer {
	o.baseURL = strings.TrimRight(u, "/")
	return o
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAIDecomposer) Decompose(ctx context.Context, dishName string) ([]string, error) {
	payload := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": decomposeSystemPrompt},
			{"role": "user", "content": fmt.Sprintf(decomposeUserPrompt, dishName)},
		},
		"temperature": 0.2,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decomposition payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create decomposition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat completions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read decomposition response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completions API error %d: %s", resp.StatusCode, string(body))
	}

	var cr chatCompletionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to parse chat completions JSON: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("chat completions returned no choices")
	}

	return parseIngredientList(cr.Choices[0].Message.Content)
}

// GeminiDecomposer reuses the Gemini backend with the same prompt.
type GeminiDecomposer struct {
	gemini *GeminiBackend
}

func NewGeminiDecomposer(gemini *GeminiBackend) *GeminiDecomposer {
	return &GeminiDecomposer{gemini: gemini}
}

func (g *GeminiDecomposer) Decompose(ctx context.Context, dishName string) ([]string, error) {
	text, err := g.gemini.GenerateText(ctx, fmt.Sprintf(decomposeUserPrompt, dishName))
	if err != nil {
		return nil, err
	}
	return parseIngredientList(text)
}

// knownDishIngredients is a fixed last-resort table for common dish types,
// consulted only when every decomposition backend has failed. Matched by
// case-insensitive substring on the dish name.
var knownDishIngredients = map[string][]string{
	"roll":    {"rice", "nori", "salmon", "avocado", "cucumber", "soy sauce"},
	"sushi":   {"rice", "nori", "salmon", "soy sauce", "wasabi"},
	"pizza":   {"dough", "tomato sauce", "mozzarella cheese", "pepperoni", "tomatoes"},
	"pasta":   {"pasta", "tomato sauce", "parmesan cheese", "olive oil"},
	"pilaf":   {"rice", "meat", "carrot", "onion", "oil", "spices"},
	"borscht": {"beetroot", "cabbage", "potato", "carrot", "onion", "tomato paste", "meat"},
}

func knownIngredientsFor(dishName string) ([]string, bool) {
	lower := strings.ToLower(dishName)
	for dishType, ingredients := range knownDishIngredients {
		if strings.Contains(lower, dishType) {
			return ingredients, true
		}
	}
	return nil, false
}

// DecompositionService delegates to the primary backend and swaps to the
// fallback on any primary failure, then to the known-dish table when both
// backends are down. Errors and empty lists still propagate: absorbing them
// into a single-ingredient result is the orchestrator's job.
type DecompositionService struct {
	primary  DecompositionBackend
	fallback DecompositionBackend
	log      *zap.Logger
}

func NewDecompositionService(primary, fallback DecompositionBackend, log *zap.Logger) *DecompositionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DecompositionService{primary: primary, fallback: fallback, log: log}
}

func (s *DecompositionService) Decompose(ctx context.Context, dishName string) ([]string, error) {
	ingredients, err := s.primary.Decompose(ctx, dishName)
	if err == nil {
		return ingredients, nil
	}

	if s.fallback != nil {
		s.log.Warn("primary decomposition failed, trying fallback",
			zap.String("dish", dishName), zap.Error(err))

		ingredients, ferr := s.fallback.Decompose(ctx, dishName)
		if ferr == nil {
			return ingredients, nil
		}
		err = fmt.Errorf("decomposition failed (primary: %v): %w", err, ferr)
	}

	if known, ok := knownIngredientsFor(dishName); ok {
		s.log.Warn("decomposition backends unavailable, using known dish ingredients",
			zap.String("dish", dishName), zap.Error(err))
		return known, nil
	}
	return nil, err
}

// parseIngredientList extracts a JSON string array from a model answer,
// tolerating surrounding code fences and prose.
func parseIngredientList(text string) ([]string, error) {
	cleaned := stripCodeFences(strings.TrimSpace(text))

	// Models occasionally wrap the array in a sentence; cut to the brackets.
	if i := strings.Index(cleaned, "["); i >= 0 {
		if j := strings.LastIndex(cleaned, "]"); j > i {
			cleaned = cleaned[i : j+1]
		}
	}

	var raw []string
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ingredient list %q: %w", text, err)
	}

	ingredients := make([]string, 0, len(raw))
	for _, ing := range raw {
		if ing = strings.TrimSpace(ing); ing != "" {
			ingredients = append(ingredients, ing)
		}
	}
	return ingredients, nil
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
