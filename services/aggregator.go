package services

import (
	"github.com/Cleem224/cleem-backend-sub001/models"

	"github.com/google/uuid"
)

// IngredientFacts is one settled fan-out result: the ingredient name as
// decomposed, paired with the facts that were resolved (or substituted)
// for it.
type IngredientFacts struct {
	Name  string
	Facts models.NutritionFacts
}

// Aggregate synthesizes the combined-dish item from the settled ingredient
// facts and appends the per-ingredient items after it, preserving the
// decomposition order. Pure: raw sums only, no rounding or filtering.
func Aggregate(dishName string, ingredients []IngredientFacts) []models.RecognizedItem {
	var sugar, fiber, sodium, chol float64
	combined := models.NutritionFacts{
		Source: models.SourceCombined,
		Label:  dishName,
	}

	names := make([]string, 0, len(ingredients))
	items := make([]models.RecognizedItem, 0, len(ingredients)+1)

	for _, ing := range ingredients {
		combined.Calories += ing.Facts.Calories
		combined.ProteinG += ing.Facts.ProteinG
		combined.FatG += ing.Facts.FatG
		combined.CarbsG += ing.Facts.CarbsG
		if ing.Facts.SugarG != nil {
			sugar += *ing.Facts.SugarG
		}
		if ing.Facts.FiberG != nil {
			fiber += *ing.Facts.FiberG
		}
		if ing.Facts.SodiumMg != nil {
			sodium += *ing.Facts.SodiumMg
		}
		if ing.Facts.CholesterolMg != nil {
			chol += *ing.Facts.CholesterolMg
		}
		names = append(names, ing.Name)
	}

	combined.SugarG = &sugar
	combined.FiberG = &fiber
	combined.SodiumMg = &sodium
	combined.CholesterolMg = &chol

	items = append(items, models.RecognizedItem{
		ID:          uuid.New(),
		Name:        dishName,
		Confidence:  1.0,
		Nutrition:   combined,
		Ingredients: names,
	})

	for _, ing := range ingredients {
		items = append(items, models.RecognizedItem{
			ID:         uuid.New(),
			Name:       ing.Name,
			Confidence: 1.0,
			Nutrition:  ing.Facts,
		})
	}
	return items
}
