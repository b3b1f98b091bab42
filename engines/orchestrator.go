package engines

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/ai-synapse/ocr-core/db"
	"go.uber.org/zap"
)

const (
	defaultEngineTimeout = 2 * time.Minute
	shortTextThreshold   = 10 // results at or below this length are noise
)

// Orchestrator fans a page out to the requested engines and keeps the single
// best recognition. Engines run concurrently in independent failure domains:
// a panic, error or timeout in one engine degrades that engine's result to
// empty text with zero confidence and never touches the others.
type Orchestrator struct {
	registry *Registry
	timeout  time.Duration
}

func NewOrchestrator(registry *Registry) *Orchestrator {
	return &Orchestrator{registry: registry, timeout: defaultEngineTimeout}
}

func (o *Orchestrator) WithTimeout(timeout time.Duration) *Orchestrator {
	o.timeout = timeout
	return o
}

// RecognizePage never fails: with no usable engines, or all engines failing,
// it still returns a well-formed empty result for the page.
func (o *Orchestrator) RecognizePage(ctx context.Context, page *image.Gray, pageNumber int, kinds []Kind) db.OCRResult {
	resolved := o.registry.Resolve(kinds)
	if len(resolved) == 0 {
		logger.Error("No OCR engine available", zap.Int("pageNumber", pageNumber))
		return db.OCRResult{PageNumber: pageNumber}
	}

	tasks := make([]<-chan async.Result[db.OCRResult], 0, len(resolved))
	for _, engine := range resolved {
		tasks = append(tasks, o.runEngine(ctx, engine, page, pageNumber))
	}

	// Await in engine-set order so tie-breaking stays deterministic.
	results := make([]db.OCRResult, 0, len(tasks))
	for _, task := range tasks {
		result, _ := async.Await(task)
		results = append(results, result)
	}

	return SelectBest(results)
}

func (o *Orchestrator) runEngine(ctx context.Context, engine Engine, page *image.Gray, pageNumber int) <-chan async.Result[db.OCRResult] {
	return async.Go(func() (result db.OCRResult, _ error) {
		start := time.Now()
		result = db.OCRResult{Engine: string(engine.Kind()), PageNumber: pageNumber}

		defer func() {
			result.ElapsedMs = time.Since(start).Milliseconds()
			if r := recover(); r != nil {
				logger.Error("OCR engine panicked",
					zap.String("engine", string(engine.Kind())), zap.Any("cause", r))
				result.Text = ""
				result.Confidence = 0
			}
		}()

		engineCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		text, confidence, err := engine.Recognize(engineCtx, page)
		if err != nil {
			logger.Error("OCR engine failed",
				zap.String("engine", string(engine.Kind())),
				zap.Int("pageNumber", pageNumber), zap.Error(err))
			return result, nil
		}

		result.Text = text
		result.Confidence = math.Max(0, math.Min(1, confidence))
		return result, nil
	})
}

// SelectBest applies the selection rule: results with more than 10 characters
// of text compete on 0.7·confidence + 0.3·min(len/1000, 1); when every result
// is that short, the longest text wins regardless. Ties keep the first-seen
// engine, so the caller's engine order fixes the outcome.
func SelectBest(results []db.OCRResult) db.OCRResult {
	if len(results) == 0 {
		return db.OCRResult{}
	}

	var candidates []db.OCRResult
	for _, r := range results {
		if len(r.Text) > shortTextThreshold {
			candidates = append(candidates, r)
		}
	}

	if len(candidates) == 0 {
		best := results[0]
		for _, r := range results[1:] {
			if len(r.Text) > len(best.Text) {
				best = r
			}
		}
		return best
	}

	best := candidates[0]
	bestScore := selectionScore(best)
	for _, r := range candidates[1:] {
		if score := selectionScore(r); score > bestScore {
			best = r
			bestScore = score
		}
	}
	return best
}

func selectionScore(r db.OCRResult) float64 {
	lengthScore := math.Min(float64(len(r.Text))/1000.0, 1.0)
	return 0.7*r.Confidence + 0.3*lengthScore
}
