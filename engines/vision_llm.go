package engines

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"github.com/ollama/ollama/api"
)

const transcribePrompt = "Transcribe every piece of text visible in this scanned document page. " +
	"Output the text exactly as written, reading order, nothing else. " +
	"If the page contains no readable text, output nothing."

// VisionEngine recognizes text with a multimodal model served by ollama.
// These models report no per-word confidence, so a calibrated baseline is
// attached to non-empty transcriptions.
type VisionEngine struct {
	kind           Kind
	model          string
	baseConfidence float64
	client         *api.Client
}

// NewLlavaEngine and NewMiniCPMEngine wrap the two vision models the service
// runs alongside Tesseract. Baselines come from transcription benchmarks on
// the internal scan corpus.
func NewLlavaEngine(client *api.Client) *VisionEngine {
	return &VisionEngine{kind: KindLlava, model: "llava:13b", baseConfidence: 0.66, client: client}
}

func NewMiniCPMEngine(client *api.Client) *VisionEngine {
	return &VisionEngine{kind: KindMiniCPM, model: "minicpm-v", baseConfidence: 0.72, client: client}
}

func (e *VisionEngine) Kind() Kind { return e.kind }

func (e *VisionEngine) Recognize(ctx context.Context, page *image.Gray) (string, float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return "", 0, err
	}

	stream := false
	req := &api.ChatRequest{
		Model: e.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: transcribePrompt,
				Images:  []api.ImageData{buf.Bytes()},
			},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.0},
	}

	var text strings.Builder
	err := e.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", 0, nil
	}
	return out, e.baseConfidence, nil
}
