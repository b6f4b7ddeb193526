package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVisionBackend struct {
	text  string
	err   error
	calls int
}

func (f *fakeVisionBackend) Recognize(ctx context.Context, image []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeClassifier struct {
	labels []ClassifiedLabel
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, image []byte) ([]ClassifiedLabel, error) {
	f.calls++
	return f.labels, f.err
}

func TestIdentifyDishCleansName(t *testing.T) {
	svc := NewVisionService(&fakeVisionBackend{text: "  \"Beef Pilaf\"  "}, &fakeClassifier{}, nil)

	name, err := svc.IdentifyDish(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "Beef Pilaf", name)
}

func TestIdentifyDishNoFoodIsTerminal(t *testing.T) {
	classifier := &fakeClassifier{labels: []ClassifiedLabel{{Name: "Food", Confidence: 0.9}}}
	svc := NewVisionService(&fakeVisionBackend{text: "I can't identify a dish here"}, classifier, nil)

	_, err := svc.IdentifyDish(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrNoFoodDetected))
	// no fallback attempt for a definitive no-food answer
	assert.Zero(t, classifier.calls)
}

func TestIdentifyDishNonOverloadError(t *testing.T) {
	classifier := &fakeClassifier{}
	svc := NewVisionService(&fakeVisionBackend{err: errors.New("invalid API key")}, classifier, nil)

	_, err := svc.IdentifyDish(context.Background(), []byte("img"))
	assert.True(t, IsKind(err, ErrRecognitionFailed))
	assert.Zero(t, classifier.calls)
}

func TestIdentifyDishOverloadFallsBackToClassifier(t *testing.T) {
	primary := &fakeVisionBackend{err: errors.New("googleapi: Error 503: model overloaded")}
	classifier := &fakeClassifier{labels: []ClassifiedLabel{
		{Name: "Furniture", Confidence: 0.95},
		{Name: "fried rice dish", Confidence: 0.8},
	}}
	svc := NewVisionService(primary, classifier, nil)

	name, err := svc.IdentifyDish(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "Fried rice dish", name)
	assert.Equal(t, 1, classifier.calls)
}

func TestIdentifyDishOverloadKeywordLabelCapitalized(t *testing.T) {
	primary := &fakeVisionBackend{err: errors.New("503")}
	classifier := &fakeClassifier{labels: []ClassifiedLabel{
		{Name: "food", Confidence: 0.9},
		{Name: "container", Confidence: 0.7},
	}}
	svc := NewVisionService(primary, classifier, nil)

	name, err := svc.IdentifyDish(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "Food", name)
}

func TestIdentifyDishOverloadPlaceholderWhenNothingEdible(t *testing.T) {
	primary := &fakeVisionBackend{err: errors.New("503 service unavailable")}
	classifier := &fakeClassifier{labels: []ClassifiedLabel{
		{Name: "Table", Confidence: 0.9},
		{Name: "Plate", Confidence: 0.8},
	}}
	svc := NewVisionService(primary, classifier, nil)

	name, err := svc.IdentifyDish(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "Food", name)
}

func TestIdentifyDishOverloadAndClassifierFailure(t *testing.T) {
	primary := &fakeVisionBackend{err: errors.New("service overloaded")}
	classifier := &fakeClassifier{err: errors.New("rekognition down")}
	svc := NewVisionService(primary, classifier, nil)

	_, err := svc.IdentifyDish(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrTransientOverload))
}

func TestIdentifyDishOverloadClassifierNoLabels(t *testing.T) {
	primary := &fakeVisionBackend{err: errors.New("overloaded")}
	svc := NewVisionService(primary, &fakeClassifier{}, nil)

	_, err := svc.IdentifyDish(context.Background(), []byte("img"))
	assert.True(t, IsKind(err, ErrTransientOverload))
}

func TestCleanDishName(t *testing.T) {
	assert.Equal(t, "Pasta Carbonara", cleanDishName("'Pasta Carbonara'"))
	assert.Equal(t, "Pasta Carbonara", cleanDishName("\n\"Pasta Carbonara\" "))
	assert.Equal(t, "", cleanDishName("  "))
}
