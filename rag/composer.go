package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/llm"
	"github.com/ai-synapse/ocr-core/prompts"
	"go.uber.org/zap"
)

const (
	snippetLimit = 200

	noResultsAnswer = "I couldn't find relevant information in your documents to answer this question."
	llmFailedAnswer = "I found relevant passages in your documents but couldn't generate an answer right now. Please try again."
)

// Answer is a composed response with its supporting citations. Confidence is
// the mean similarity-weighted confidence of the cited chunks.
type Answer struct {
	Text       string        `json:"text"`
	Citations  []db.Citation `json:"citations"`
	Confidence float64       `json:"confidence"`
}

// Composer turns retrieved hits into a grounded answer. Model trouble never
// propagates: the answer degrades to a fixed apology with no citations.
type Composer struct {
	client llm.LLMClient
}

func NewComposer(client llm.LLMClient) *Composer {
	return &Composer{client: client}
}

func (c *Composer) Compose(ctx context.Context, question string, hits []Hit) Answer {
	if len(hits) == 0 {
		return Answer{Text: noResultsAnswer, Citations: []db.Citation{}}
	}

	citations := make([]db.Citation, 0, len(hits))
	mean := 0.0
	var contextBlock strings.Builder

	for i, hit := range hits {
		record := hit.Record
		citations = append(citations, db.Citation{
			DocumentID: record.DocumentID,
			PageNumber: record.PageNumber,
			TableID:    record.TableID,
			Snippet:    snippet(record.Text),
			Confidence: record.Confidence,
		})
		mean += record.Confidence

		fmt.Fprintf(&contextBlock, "[%d] (document %s, page %d)\n%s\n\n",
			i+1, record.DocumentID, record.PageNumber, record.Text)
	}
	mean /= float64(len(hits))

	text, err := async.Await(prompts.GenerateAnswer(ctx, c.client, question, strings.TrimSpace(contextBlock.String())))
	if err != nil {
		logger.Error("Answer generation failed", zap.Error(err))
		return Answer{Text: llmFailedAnswer, Citations: []db.Citation{}}
	}

	return Answer{Text: strings.TrimSpace(text), Citations: citations, Confidence: mean}
}

// snippet truncates on rune boundaries so multibyte OCR text never turns into
// invalid UTF-8 in a citation.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "..."
}
