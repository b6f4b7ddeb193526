package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cleem224/cleem-backend-sub001/models"

	"gorm.io/gorm"
)

// FoodService is the application-facing layer around the pipeline: manual
// catalog search plus the durable history of recognition results.
type FoodService struct {
	eda *EdamamService
	db  *gorm.DB
}

func NewFoodService(eda *EdamamService, db *gorm.DB) *FoodService {
	return &FoodService{eda: eda, db: db}
}

// Search the food catalog manually
func (s *FoodService) Search(ctx context.Context, query string) ([]models.FoodItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	return s.eda.SearchFoods(ctx, query)
}

// SaveRecognitionResult snapshots the items of one pipeline run.
func (s *FoodService) SaveRecognitionResult(userID uint, runID string, items []models.RecognizedItem) error {
	records := make([]models.FoodRecord, 0, len(items))
	for _, item := range items {
		rec := models.FoodRecord{
			RunID:      runID,
			UserID:     userID,
			Name:       item.Name,
			Confidence: item.Confidence,
			Calories:   item.Nutrition.Calories,
			Protein:    item.Nutrition.ProteinG,
			Fat:        item.Nutrition.FatG,
			Carbs:      item.Nutrition.CarbsG,
			Source:     string(item.Nutrition.Source),
			ImageURL:   item.ImageURL,
		}
		if item.Nutrition.SugarG != nil {
			rec.Sugar = *item.Nutrition.SugarG
		}
		if item.Nutrition.FiberG != nil {
			rec.Fiber = *item.Nutrition.FiberG
		}
		if item.Nutrition.SodiumMg != nil {
			rec.Sodium = *item.Nutrition.SodiumMg
		}
		if item.Nutrition.CholesterolMg != nil {
			rec.Cholesterol = *item.Nutrition.CholesterolMg
		}
		if len(item.Ingredients) > 0 {
			rec.Composed = true
			rec.Ingredients = strings.Join(item.Ingredients, ",")
		}
		records = append(records, rec)
	}

	if err := s.db.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to save recognition result: %w", err)
	}
	return nil
}

// History returns a user's saved records, newest run first.
func (s *FoodService) History(userID uint, limit int) ([]models.FoodRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []models.FoodRecord
	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}
