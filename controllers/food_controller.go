package controllers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/Cleem224/cleem-backend-sub001/config"
	"github.com/Cleem224/cleem-backend-sub001/services"
	"github.com/Cleem224/cleem-backend-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FoodController exposes the recognition pipeline and the food catalog over
// HTTP.
type FoodController struct {
	pipeline *services.RecognitionPipeline
	foods    *services.FoodService
	images   *utils.ScanImageStore
	hub      *services.RealtimeHub
	cfg      *config.Config
	log      *zap.Logger

	// run owner registry so progress events reach the right sockets
	runOwners sync.Map // runID -> userID (uint)
}

func NewFoodController(pipeline *services.RecognitionPipeline, foods *services.FoodService, images *utils.ScanImageStore, hub *services.RealtimeHub, cfg *config.Config, log *zap.Logger) *FoodController {
	if log == nil {
		log = zap.NewNop()
	}
	fc := &FoodController{
		pipeline: pipeline,
		foods:    foods,
		images:   images,
		hub:      hub,
		cfg:      cfg,
		log:      log,
	}
	pipeline.WithObserver(fc.onStage)
	return fc
}

func (fc *FoodController) onStage(runID string, stage services.PipelineStage) {
	if fc.hub == nil {
		return
	}
	if uid, ok := fc.runOwners.Load(runID); ok {
		fc.hub.BroadcastProgress(uid.(uint), runID, stage)
	}
}

// POST /food/recognize  { "image_base64": "data:image/jpeg;base64,…", "user_id": 1 }
func (fc *FoodController) Recognize(c *gin.Context) {
	var req struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
		UserID      uint   `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	raw, err := decodeImageDataURI(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := utils.NormalizeImage(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return
	}

	runID := uuid.NewString()
	fc.runOwners.Store(runID, req.UserID)
	defer fc.runOwners.Delete(runID)

	items, err := fc.pipeline.RunWithRetry(c.Request.Context(), runID, image,
		fc.cfg.RecognizeRetries, fc.cfg.RecognizeRetryDelay)
	if err != nil {
		fc.respondPipelineError(c, err)
		return
	}

	// Best-effort: attach the stored scan image to the returned items.
	if fc.images != nil {
		if url, uerr := fc.images.Upload(c.Request.Context(), runID, image); uerr == nil {
			for i := range items {
				items[i].ImageURL = url
			}
		} else {
			fc.log.Warn("scan image upload failed", zap.String("run_id", runID), zap.Error(uerr))
		}
	}

	if fc.foods != nil {
		if serr := fc.foods.SaveRecognitionResult(req.UserID, runID, items); serr != nil {
			fc.log.Warn("failed to persist recognition result", zap.String("run_id", runID), zap.Error(serr))
		}
	}

	c.JSON(http.StatusOK, gin.H{"run_id": runID, "items": items})
}

func (fc *FoodController) respondPipelineError(c *gin.Context, err error) {
	if pe, ok := services.AsPipelineError(err); ok {
		status := http.StatusBadGateway
		switch pe.Kind {
		case services.ErrNoFoodDetected:
			status = http.StatusUnprocessableEntity
		case services.ErrTransientOverload:
			status = http.StatusServiceUnavailable
		}
		fc.log.Info("pipeline run failed",
			zap.String("kind", string(pe.Kind)), zap.Error(err))
		c.JSON(status, gin.H{"error": pe.UserMessage()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "Food recognition failed"})
}

// GET /food/search?q=apple
func (fc *FoodController) Search(c *gin.Context) {
	out, err := fc.foods.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /food/history?user_id=1&limit=50
func (fc *FoodController) History(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := fc.foods.History(uint(userID), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// decodeImageDataURI accepts either a bare base64 payload or a
// "data:image/…;base64," URI.
func decodeImageDataURI(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], "data:image") {
			return nil, fmt.Errorf("invalid data URI")
		}
		s = parts[1]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return data, nil
}
