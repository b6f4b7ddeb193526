package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Cleem224/cleem-backend-sub001/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineStage identifies a pipeline phase for progress reporting.
type PipelineStage string

const (
	StageRecognizing PipelineStage = "recognizing"
	StageDecomposing PipelineStage = "decomposing"
	StageLookingUp   PipelineStage = "looking_up"
	StageAggregating PipelineStage = "aggregating"
	StageDone        PipelineStage = "done"
)

// StageObserver receives progress events for a run. May be nil.
type StageObserver func(runID string, stage PipelineStage)

// Decomposer is the stage-2 dependency; the concrete DecompositionService
// satisfies it.
type Decomposer interface {
	Decompose(ctx context.Context, dishName string) ([]string, error)
}

// DishIdentifier is the stage-1 dependency; the concrete VisionService
// satisfies it.
type DishIdentifier interface {
	IdentifyDish(ctx context.Context, image []byte) (string, error)
}

// RecognitionPipeline drives one photo through recognition, decomposition,
// the concurrent nutrition fan-out and aggregation. Instances hold no
// per-run state and are safe for concurrent runs.
type RecognitionPipeline struct {
	vision    DishIdentifier
	decompose Decomposer
	nutrition NutritionBackend
	observer  StageObserver
	log       *zap.Logger
}

func NewRecognitionPipeline(vision DishIdentifier, decompose Decomposer, nutrition NutritionBackend, log *zap.Logger) *RecognitionPipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecognitionPipeline{
		vision:    vision,
		decompose: decompose,
		nutrition: nutrition,
		log:       log,
	}
}

// WithObserver sets the progress callback and returns the pipeline.
func (p *RecognitionPipeline) WithObserver(obs StageObserver) *RecognitionPipeline {
	p.observer = obs
	return p
}

func (p *RecognitionPipeline) notify(runID string, stage PipelineStage) {
	if p.observer != nil {
		p.observer(runID, stage)
	}
}

// Run executes one pipeline pass over a normalized JPEG image. On success
// the returned list holds the combined-dish item followed by one item per
// ingredient; the only error conditions are no-food and recognition
// failure, everything else degrades internally.
func (p *RecognitionPipeline) Run(ctx context.Context, runID string, image []byte) ([]models.RecognizedItem, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	log := p.log.With(zap.String("run_id", runID))

	// Stage 1: recognize the dish.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.notify(runID, StageRecognizing)

	dishName, err := p.vision.IdentifyDish(ctx, image)
	if err != nil {
		return nil, err
	}
	log.Info("dish recognized", zap.String("dish", dishName))

	// Stage 2: decompose into ingredients. Never fatal: any failure or an
	// explicitly empty list degrades to the dish as its own ingredient.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.notify(runID, StageDecomposing)

	ingredients, err := p.decompose.Decompose(ctx, dishName)
	if err != nil || len(ingredients) == 0 {
		if err != nil {
			log.Warn("decomposition degraded to single ingredient", zap.Error(err))
		} else {
			log.Warn("decomposition returned no ingredients, using dish name")
		}
		ingredients = []string{dishName}
	}
	log.Info("dish decomposed", zap.Strings("ingredients", ingredients))

	// Stage 3: concurrent nutrition fan-out. Results land at the index of
	// the ingredient that issued them, so output order tracks decomposition
	// order regardless of completion order. The run is cancelable up to
	// here; once issued, in-flight lookups settle even if the caller has
	// gone away, so the aggregate never sees a partial set.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.notify(runID, StageLookingUp)

	lookupCtx := context.WithoutCancel(ctx)
	settled := make([]IngredientFacts, len(ingredients))
	var wg sync.WaitGroup
	for i, name := range ingredients {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			settled[i] = IngredientFacts{Name: name, Facts: p.lookupWithFallback(lookupCtx, log, name)}
		}(i, name)
	}
	wg.Wait()

	// Stage 4+5: aggregate and emit, combined dish first.
	p.notify(runID, StageAggregating)
	items := Aggregate(dishName, settled)
	for i := range items {
		items[i].Name = titleCase(items[i].Name)
	}

	p.notify(runID, StageDone)
	return items, nil
}

// lookupWithFallback resolves facts for one ingredient, substituting the
// fixed default record on any failure or an all-zero-macro response.
func (p *RecognitionPipeline) lookupWithFallback(ctx context.Context, log *zap.Logger, name string) models.NutritionFacts {
	facts, err := p.nutrition.Lookup(ctx, name)
	if err != nil {
		log.Warn("nutrition lookup degraded to default facts",
			zap.String("ingredient", name), zap.Error(err))
		return FallbackFacts(name)
	}
	if facts.ZeroMacros() {
		log.Warn("nutrition lookup returned all-zero macros, substituting default facts",
			zap.String("ingredient", name))
		return FallbackFacts(name)
	}
	return facts
}

// RunWithRetry applies the caller-level retry policy: re-run the whole
// pipeline on a transient-overload classification only, up to retries extra
// attempts with a fixed delay between them.
func (p *RecognitionPipeline) RunWithRetry(ctx context.Context, runID string, image []byte, retries int, delay time.Duration) ([]models.RecognizedItem, error) {
	var (
		items []models.RecognizedItem
		err   error
	)
	for attempt := 0; ; attempt++ {
		items, err = p.Run(ctx, runID, image)
		if err == nil || !IsKind(err, ErrTransientOverload) || attempt >= retries {
			return items, err
		}
		p.log.Warn("recognition overloaded, retrying run",
			zap.String("run_id", runID),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// titleCase uppercases the first letter of each word for display names.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
