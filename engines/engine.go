package engines

import (
	"context"
	"fmt"
	"image"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// Kind is the closed set of supported OCR engines. Callers pick engines by
// kind; dispatch goes through the registry, never through string branching.
type Kind string

const (
	KindTesseract Kind = "tesseract"
	KindLlava     Kind = "llava"
	KindMiniCPM   Kind = "minicpm"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTesseract, KindLlava, KindMiniCPM:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown ocr engine %q", s)
}

// ParseKinds keeps the caller's order and drops unknown names with a log line.
func ParseKinds(names []string) []Kind {
	var kinds []Kind
	for _, name := range names {
		kind, err := ParseKind(name)
		if err != nil {
			logger.Error("Skipping unknown OCR engine", zap.String("engine", name))
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

// Engine is one text-recognition capability. Recognize returns the extracted
// text and a confidence in [0,1]. Recoverable trouble should come back as an
// empty zero-confidence result; the orchestrator tolerates errors and panics
// all the same.
type Engine interface {
	Kind() Kind
	Recognize(ctx context.Context, page *image.Gray) (string, float64, error)
}

// Registry holds the engines whose backends initialized successfully. An
// engine that failed to come up is simply absent; resolving it logs and moves
// on rather than failing the run.
type Registry struct {
	engines map[Kind]Engine
}

func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[Kind]Engine, len(engines))}
	for _, e := range engines {
		if e == nil {
			continue
		}
		r.engines[e.Kind()] = e
	}
	return r
}

// Resolve maps kinds to live engines, preserving the caller's order.
func (r *Registry) Resolve(kinds []Kind) []Engine {
	var out []Engine
	for _, kind := range kinds {
		engine, ok := r.engines[kind]
		if !ok {
			logger.Error("OCR engine not available for this run", zap.String("engine", string(kind)))
			continue
		}
		out = append(out, engine)
	}
	return out
}

func (r *Registry) Len() int { return len(r.engines) }
