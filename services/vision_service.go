package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// VisionBackend is the primary dish recognizer: it answers with the name of
// the dish shown in a JPEG image, or plain text explaining that it can't.
type VisionBackend interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

const visionPrompt = "Identify the food dish shown in this image. Give only a simple general name " +
	"of the dish in English, without explanations. For example: 'Beef Pilaf', " +
	"'Pasta Carbonara', 'Chicken Caesar Salad'."

// foodKeywords filter the fallback classifier's labels down to food terms.
var foodKeywords = []string{
	"food", "dish", "meal", "fruit", "vegetable", "meat",
	"bread", "rice", "pasta", "salad", "soup", "dessert",
}

// VisionService resolves an image to a dish name. The cloud backend is
// primary; on an overload signature it falls back to the label classifier.
type VisionService struct {
	primary    VisionBackend
	classifier LabelClassifier
	log        *zap.Logger
}

func NewVisionService(primary VisionBackend, classifier LabelClassifier, log *zap.Logger) *VisionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VisionService{primary: primary, classifier: classifier, log: log}
}

// IdentifyDish returns the best-guess dish name for a normalized JPEG image.
// Failure modes map onto the pipeline taxonomy:
//   - deny-list answer → ErrNoFoodDetected (terminal, no fallback)
//   - overload signature → classifier fallback, ErrTransientOverload if
//     that also fails
//   - anything else → ErrRecognitionFailed
func (s *VisionService) IdentifyDish(ctx context.Context, image []byte) (string, error) {
	text, err := s.primary.Recognize(ctx, image)
	if err == nil {
		name := cleanDishName(text)
		if IsNoFoodText(name) {
			return "", NewPipelineError(ErrNoFoodDetected, "no food detected in the image", nil)
		}
		return name, nil
	}

	if !IsOverload(err) {
		return "", NewPipelineError(ErrRecognitionFailed, "vision backend failed", err)
	}

	s.log.Warn("vision backend overloaded, falling back to label classifier", zap.Error(err))

	name, ferr := s.classifyFallback(ctx, image)
	if ferr != nil {
		return "", NewPipelineError(ErrTransientOverload, "vision backend overloaded and fallback failed", ferr)
	}
	return name, nil
}

// classifyFallback runs the secondary classifier and picks the first
// food-related label, or a generic placeholder when classification worked
// but nothing looked edible.
func (s *VisionService) classifyFallback(ctx context.Context, image []byte) (string, error) {
	labels, err := s.classifier.Classify(ctx, image)
	if err != nil {
		return "", NewPipelineError(ErrClassificationFailed, "fallback classification failed", err)
	}

	for _, l := range labels {
		lower := strings.ToLower(l.Name)
		for _, kw := range foodKeywords {
			if strings.Contains(lower, kw) {
				s.log.Info("fallback classifier matched food label",
					zap.String("label", l.Name),
					zap.Float64("confidence", l.Confidence))
				return capitalize(l.Name), nil
			}
		}
	}

	if len(labels) == 0 {
		return "", NewPipelineError(ErrClassificationFailed, "classifier returned no labels", nil)
	}
	// Classification succeeded but nothing food-related: generic placeholder.
	return "Food", nil
}

// cleanDishName trims whitespace and strips surrounding quotes from a raw
// recognizer answer.
func cleanDishName(text string) string {
	name := strings.TrimSpace(text)
	name = strings.Trim(name, `"'`)
	return strings.TrimSpace(name)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
