package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Cleem224/cleem-backend-sub001/config"
	"github.com/Cleem224/cleem-backend-sub001/models"
	"github.com/Cleem224/cleem-backend-sub001/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVision struct {
	name string
	err  error
}

func (s *stubVision) IdentifyDish(ctx context.Context, image []byte) (string, error) {
	return s.name, s.err
}

type stubDecomposer struct{ ingredients []string }

func (s *stubDecomposer) Decompose(ctx context.Context, dishName string) ([]string, error) {
	return s.ingredients, nil
}

type stubNutrition struct{}

func (stubNutrition) Lookup(ctx context.Context, name string) (models.NutritionFacts, error) {
	return models.NutritionFacts{
		Calories: 100, ProteinG: 10, FatG: 2, CarbsG: 5,
		Source: models.SourceVendor, Label: name,
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RecognizeRetries:    0,
		RecognizeRetryDelay: time.Millisecond,
	}
}

func imagePayload(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func recognizeRequest(t *testing.T, fc *FoodController, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/food/recognize", fc.Recognize)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/food/recognize", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func newTestController(vision services.DishIdentifier) *FoodController {
	pipeline := services.NewRecognitionPipeline(vision,
		&stubDecomposer{ingredients: []string{"rice", "beef"}}, stubNutrition{}, nil)
	return NewFoodController(pipeline, nil, nil, nil, testConfig(), nil)
}

func TestRecognizeHappyPath(t *testing.T) {
	fc := newTestController(&stubVision{name: "beef pilaf"})

	body, err := json.Marshal(gin.H{"image_base64": imagePayload(t), "user_id": 1})
	require.NoError(t, err)

	w := recognizeRequest(t, fc, string(body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RunID string                  `json:"run_id"`
		Items []models.RecognizedItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "Beef Pilaf", resp.Items[0].Name)
	assert.Equal(t, []string{"rice", "beef"}, resp.Items[0].Ingredients)
}

func TestRecognizeNoFood(t *testing.T) {
	fc := newTestController(&stubVision{err: services.NewPipelineError(
		services.ErrNoFoodDetected, "no food detected in the image", nil)})

	body, err := json.Marshal(gin.H{"image_base64": imagePayload(t), "user_id": 1})
	require.NoError(t, err)

	w := recognizeRequest(t, fc, string(body))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "No food detected")
}

func TestRecognizeBadBase64(t *testing.T) {
	fc := newTestController(&stubVision{name: "x"})

	w := recognizeRequest(t, fc, `{"image_base64": "data:image/png;base64,%%%", "user_id": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecognizeMissingImage(t *testing.T) {
	fc := newTestController(&stubVision{name: "x"})

	w := recognizeRequest(t, fc, `{"user_id": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecodeImageDataURI(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("hello"))

	got, err := decodeImageDataURI(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = decodeImageDataURI("data:image/jpeg;base64," + raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, err = decodeImageDataURI("data:text/plain;base64," + raw)
	assert.Error(t, err)
}
