package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Cleem224/cleem-backend-sub001/models"
)

// NutritionBackend resolves a free-text food name to nutrition facts for a
// 100g reference serving.
type NutritionBackend interface {
	Lookup(ctx context.Context, name string) (models.NutritionFacts, error)
}

// EdamamService is the nutrition vendor client: the nutrition-data endpoint
// for per-ingredient facts and the food-database parser for manual search.
type EdamamService struct {
	appID   string
	appKey  string
	baseURL string
	client  *http.Client
}

func NewEdamamService(appID, appKey string, timeout time.Duration) *EdamamService {
	return &EdamamService{
		appID:   appID,
		appKey:  appKey,
		baseURL: "https://api.edamam.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the vendor endpoint (tests point it at a local server).
func (s *EdamamService) WithBaseURL(u string) *EdamamService {
	s.baseURL = u
	return s
}

// nutritionDataResponse maps the vendor's nutrient-code keyed payload.
type nutritionDataResponse struct {
	Calories       float64 `json:"calories"`
	TotalNutrients struct {
		ENERC_KCAL *nutrientInfo `json:"ENERC_KCAL"`
		PROCNT     *nutrientInfo `json:"PROCNT"`
		FAT        *nutrientInfo `json:"FAT"`
		CHOCDF     *nutrientInfo `json:"CHOCDF"`
		SUGAR      *nutrientInfo `json:"SUGAR"`
		FIBTG      *nutrientInfo `json:"FIBTG"`
		NA         *nutrientInfo `json:"NA"`
		CHOLE      *nutrientInfo `json:"CHOLE"`
	} `json:"totalNutrients"`
}

type nutrientInfo struct {
	Label    string  `json:"label"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Lookup queries nutrition facts for "100g <name>". Nutrients missing from
// the response map to zero (macros) or nil (micros), never to an error.
func (s *EdamamService) Lookup(ctx context.Context, name string) (models.NutritionFacts, error) {
	u := fmt.Sprintf("%s/api/nutrition-data?app_id=%s&app_key=%s&ingr=%s",
		s.baseURL, s.appID, s.appKey, url.QueryEscape("100g "+name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.NutritionFacts{}, fmt.Errorf("failed to create nutrition request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.NutritionFacts{}, fmt.Errorf("failed to call nutrition API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NutritionFacts{}, fmt.Errorf("failed to read nutrition response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.NutritionFacts{}, fmt.Errorf("nutrition API error %d: %s", resp.StatusCode, string(body))
	}

	var nr nutritionDataResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return models.NutritionFacts{}, fmt.Errorf("failed to parse nutrition JSON: %w", err)
	}

	facts := models.NutritionFacts{
		Calories: nr.Calories,
		Source:   models.SourceVendor,
		Label:    name,
	}
	if nr.Calories == 0 && nr.TotalNutrients.ENERC_KCAL != nil {
		facts.Calories = nr.TotalNutrients.ENERC_KCAL.Quantity
	}
	if n := nr.TotalNutrients.PROCNT; n != nil {
		facts.ProteinG = n.Quantity
	}
	if n := nr.TotalNutrients.FAT; n != nil {
		facts.FatG = n.Quantity
	}
	if n := nr.TotalNutrients.CHOCDF; n != nil {
		facts.CarbsG = n.Quantity
	}
	if n := nr.TotalNutrients.SUGAR; n != nil {
		facts.SugarG = &n.Quantity
	}
	if n := nr.TotalNutrients.FIBTG; n != nil {
		facts.FiberG = &n.Quantity
	}
	if n := nr.TotalNutrients.NA; n != nil {
		facts.SodiumMg = &n.Quantity
	}
	if n := nr.TotalNutrients.CHOLE; n != nil {
		facts.CholesterolMg = &n.Quantity
	}
	return facts, nil
}

// SearchFoods calls the food-database parser endpoint for manual search.
type foodParserResponse struct {
	Hints []struct {
		Food struct {
			FoodID   string `json:"foodId"`
			Label    string `json:"label"`
			Category string `json:"category"`
		} `json:"food"`
	} `json:"hints"`
}

func (s *EdamamService) SearchFoods(ctx context.Context, query string) ([]models.FoodItem, error) {
	u := fmt.Sprintf("%s/api/food-database/v2/parser?ingr=%s&app_id=%s&app_key=%s",
		s.baseURL, url.QueryEscape(query), s.appID, s.appKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call food parser: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read parser response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("food parser API error %d: %s", resp.StatusCode, string(body))
	}

	var pr foodParserResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse food parser JSON: %w", err)
	}

	results := make([]models.FoodItem, 0, len(pr.Hints))
	for _, h := range pr.Hints {
		results = append(results, models.FoodItem{
			VendorFoodID: h.Food.FoodID,
			Label:        h.Food.Label,
			Category:     h.Food.Category,
		})
	}
	return results, nil
}

// FallbackFacts is the fixed non-zero record substituted when a lookup
// fails outright or comes back with every macro at zero.
func FallbackFacts(label string) models.NutritionFacts {
	sugar, fiber, sodium, chol := 2.0, 1.0, 10.0, 0.0
	return models.NutritionFacts{
		Calories:      100,
		ProteinG:      5,
		FatG:          5,
		CarbsG:        15,
		SugarG:        &sugar,
		FiberG:        &fiber,
		SodiumMg:      &sodium,
		CholesterolMg: &chol,
		Source:        models.SourceVendorFallback,
		Label:         label,
	}
}
