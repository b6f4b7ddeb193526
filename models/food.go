package models

import "gorm.io/gorm"

// A catalog entry from the food-database search. Transient: search results
// pass straight through to the caller and are never persisted.
type FoodItem struct {
	VendorFoodID string `json:"vendor_food_id"`
	Label        string `json:"label"`
	Category     string `json:"category,omitempty"`
}

// FoodRecord is the durable snapshot of one RecognizedItem produced by a
// pipeline run. The combined dish and its ingredients share a RunID.
type FoodRecord struct {
	gorm.Model
	RunID  string `gorm:"type:varchar(36);index;not null"`
	UserID uint   `gorm:"index"`

	Name       string `gorm:"not null"`
	Confidence float64

	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
	Sugar    float64
	Fiber    float64
	Sodium   float64
	// Cholesterol in mg, like Sodium
	Cholesterol float64

	Source   string // provenance tag of the facts record
	Composed bool   // true on the combined-dish row
	// Ingredient names of a composed dish, comma-separated
	Ingredients string
	ImageURL    string
}
