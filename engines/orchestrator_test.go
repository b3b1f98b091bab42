package engines

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/ai-synapse/ocr-core/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	kind       Kind
	text       string
	confidence float64
	err        error
	panics     bool
	delay      time.Duration
}

func (f *fakeEngine) Kind() Kind { return f.kind }

func (f *fakeEngine) Recognize(ctx context.Context, _ *image.Gray) (string, float64, error) {
	if f.panics {
		panic("engine blew up")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", 0, ctx.Err()
		}
	}
	return f.text, f.confidence, f.err
}

func testPage() *image.Gray {
	return image.NewGray(image.Rect(0, 0, 8, 8))
}

func TestSelectBest_PrefersScoreOverRawConfidence(t *testing.T) {
	results := []db.OCRResult{
		{Engine: "tesseract", Text: strings.Repeat("a", 300), Confidence: 0.9},
		{Engine: "llava", Text: strings.Repeat("b", 50), Confidence: 0.2},
		{Engine: "minicpm", Text: strings.Repeat("c", 310), Confidence: 0.95},
	}

	best := SelectBest(results)
	assert.Equal(t, "minicpm", best.Engine)
	assert.InDelta(t, 0.758, selectionScore(best), 1e-9)
}

func TestSelectBest_AllShortFallsBackToLongest(t *testing.T) {
	results := []db.OCRResult{
		{Engine: "tesseract", Text: "abc", Confidence: 0.99},
		{Engine: "llava", Text: "abcdefgh", Confidence: 0.1},
		{Engine: "minicpm", Text: "", Confidence: 0.5},
	}

	best := SelectBest(results)
	assert.Equal(t, "llava", best.Engine)
}

func TestSelectBest_TieKeepsFirstSeen(t *testing.T) {
	text := strings.Repeat("x", 100)
	results := []db.OCRResult{
		{Engine: "tesseract", Text: text, Confidence: 0.8},
		{Engine: "llava", Text: text, Confidence: 0.8},
	}

	best := SelectBest(results)
	assert.Equal(t, "tesseract", best.Engine)
}

func TestSelectBest_Empty(t *testing.T) {
	best := SelectBest(nil)
	assert.Equal(t, db.OCRResult{}, best)
}

func TestRecognizePage_PanicIsolation(t *testing.T) {
	good := &fakeEngine{kind: KindTesseract, text: strings.Repeat("ok ", 50), confidence: 0.8}
	bad := &fakeEngine{kind: KindLlava, panics: true}

	orch := NewOrchestrator(NewRegistry(good, bad))
	best := orch.RecognizePage(context.Background(), testPage(), 1, []Kind{KindTesseract, KindLlava})

	assert.Equal(t, string(KindTesseract), best.Engine)
	assert.Equal(t, 1, best.PageNumber)
	assert.Equal(t, 0.8, best.Confidence)
}

func TestRecognizePage_AllEnginesFailStillReturnsResult(t *testing.T) {
	failing := &fakeEngine{kind: KindTesseract, err: assert.AnError}
	panicking := &fakeEngine{kind: KindLlava, panics: true}

	orch := NewOrchestrator(NewRegistry(failing, panicking))
	best := orch.RecognizePage(context.Background(), testPage(), 3, []Kind{KindTesseract, KindLlava})

	assert.Empty(t, best.Text)
	assert.Zero(t, best.Confidence)
	assert.Equal(t, 3, best.PageNumber)
}

func TestRecognizePage_NoEnginesAvailable(t *testing.T) {
	orch := NewOrchestrator(NewRegistry())
	best := orch.RecognizePage(context.Background(), testPage(), 2, []Kind{KindTesseract})

	assert.Equal(t, db.OCRResult{PageNumber: 2}, best)
}

func TestRecognizePage_TimeoutDegradesEngine(t *testing.T) {
	slow := &fakeEngine{kind: KindLlava, text: strings.Repeat("slow ", 40), confidence: 0.9, delay: time.Second}
	fast := &fakeEngine{kind: KindTesseract, text: strings.Repeat("fast ", 40), confidence: 0.5}

	orch := NewOrchestrator(NewRegistry(slow, fast)).WithTimeout(20 * time.Millisecond)
	best := orch.RecognizePage(context.Background(), testPage(), 1, []Kind{KindLlava, KindTesseract})

	assert.Equal(t, string(KindTesseract), best.Engine)
}

func TestParseKinds_DropsUnknown(t *testing.T) {
	kinds := ParseKinds([]string{"tesseract", "nope", "minicpm"})
	require.Equal(t, []Kind{KindTesseract, KindMiniCPM}, kinds)
}
