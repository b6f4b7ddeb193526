package main

import (
	"context"

	"github.com/Cleem224/cleem-backend-sub001/config"
	"github.com/Cleem224/cleem-backend-sub001/controllers"
	"github.com/Cleem224/cleem-backend-sub001/routes"
	"github.com/Cleem224/cleem-backend-sub001/services"
	"github.com/Cleem224/cleem-backend-sub001/utils"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := utils.NewLogger()
	defer log.Sync()

	db := config.InitDB(cfg)

	ctx := context.Background()

	classifier, err := services.NewRekognitionService(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal("rekognition init failed", zap.Error(err))
	}

	gemini := services.NewGeminiBackend(cfg.GeminiAPIKey, cfg.GeminiModel)
	vision := services.NewVisionService(gemini, classifier, log)

	decomposer := services.NewDecompositionService(
		services.NewOpenAIDecomposer(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.RequestTimeout),
		services.NewGeminiDecomposer(gemini),
		log,
	)

	edamam := services.NewEdamamService(cfg.EdamamAppID, cfg.EdamamAppKey, cfg.RequestTimeout)

	pipeline := services.NewRecognitionPipeline(vision, decomposer, edamam, log)
	foods := services.NewFoodService(edamam, db)
	hub := services.NewRealtimeHub()

	// The scan image store is optional; without a bucket the pipeline still
	// runs, items just carry no image URL.
	var images *utils.ScanImageStore
	if cfg.S3Bucket != "" {
		images, err = utils.NewScanImageStore(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.CDNBaseURL)
		if err != nil {
			log.Fatal("s3 init failed", zap.Error(err))
		}
	}

	fc := controllers.NewFoodController(pipeline, foods, images, hub, cfg, log)
	rc := controllers.NewRealtimeController(hub)

	r := routes.SetupRouter(fc, rc, log)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
