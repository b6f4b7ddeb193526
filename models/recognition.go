package models

import "github.com/google/uuid"

// NutritionSource records where a facts record came from.
type NutritionSource string

const (
	SourceVendor          NutritionSource = "vendor"
	SourceVendorFallback  NutritionSource = "vendor_fallback"
	SourceDefaultFallback NutritionSource = "default_fallback"
	SourceCombined        NutritionSource = "combined"
)

// NutritionFacts holds macro/micronutrient values for a 100g reference
// serving. The four macro fields are always set; the micros are nil when
// the vendor did not report them.
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`

	SugarG        *float64 `json:"sugar_g,omitempty"`
	FiberG        *float64 `json:"fiber_g,omitempty"`
	SodiumMg      *float64 `json:"sodium_mg,omitempty"`
	CholesterolMg *float64 `json:"cholesterol_mg,omitempty"`

	Source NutritionSource `json:"source"`
	// Label is the name the facts were resolved for; it can differ from the
	// item's display name after formatting.
	Label string `json:"label"`
}

// ZeroMacros reports whether all four macro fields are exactly zero, the
// signature of a garbage vendor response. Known heuristic: a legitimately
// near-zero food (plain water, black coffee) would trip it too.
func (f NutritionFacts) ZeroMacros() bool {
	return f.Calories == 0 && f.ProteinG == 0 && f.FatG == 0 && f.CarbsG == 0
}

// RecognizedItem is one food item surfaced by the recognition pipeline,
// either the synthesized combined dish or a single ingredient.
type RecognizedItem struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Confidence float64        `json:"confidence"`
	Nutrition  NutritionFacts `json:"nutrition"`
	ImageURL   string         `json:"image_url,omitempty"`
	// Ingredients is set only on the combined-dish item, in decomposition order.
	Ingredients []string `json:"ingredients,omitempty"`
}
