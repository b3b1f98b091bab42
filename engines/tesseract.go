package engines

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text with a local Tesseract install through
// gosseract. A fresh client per call keeps recognitions independent; the
// library is not safe for concurrent reuse of one client.
type TesseractEngine struct {
	language string
}

func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}
}

func (e *TesseractEngine) Kind() Kind { return KindTesseract }

func (e *TesseractEngine) Recognize(ctx context.Context, page *image.Gray) (string, float64, error) {
	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := e.setImage(client, page); err != nil {
		return "", 0, err
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, err
	}
	text = strings.TrimSpace(text)

	return text, wordConfidence(client), nil
}

// RecognizeCell runs a single-line recognition pass scoped to one table cell.
// Matches vision.CellRecognizer.
func (e *TesseractEngine) RecognizeCell(ctx context.Context, cell *image.Gray) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := e.setImage(client, cell); err != nil {
		return "", err
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", err
	}

	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *TesseractEngine) setImage(client *gosseract.Client, img *image.Gray) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return err
	}
	return client.SetLanguage(e.language)
}

// wordConfidence averages per-word confidences, scaled from Tesseract's
// 0-100 range down to [0,1]. No words means no confidence.
func wordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}

	sum := 0.0
	n := 0
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		sum += box.Confidence / 100.0
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
