package rag

import (
	"context"
	"sort"

	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/embedding"
)

const defaultTopK = 5

// Hit is one retrieved chunk with its similarity to the query.
type Hit struct {
	Record db.EmbeddingModel
	Score  float64
}

// Retriever ranks stored embeddings against a query vector by cosine
// similarity. The corpus is scanned in full on every query; collections here
// are per-tenant and small enough that an index would not pay for itself.
type Retriever struct {
	embeddings db.EmbeddingStore
	topK       int
}

func NewRetriever(embeddings db.EmbeddingStore, topK int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{embeddings: embeddings, topK: topK}
}

// Retrieve returns the top-K hits, highest similarity first. An empty query
// vector retrieves nothing; a non-empty documentIDs list restricts the scan to
// those documents. Ties keep insertion order, so repeated queries rank the
// same way.
func (r *Retriever) Retrieve(ctx context.Context, queryVector []float32, documentIDs []string) ([]Hit, error) {
	if len(queryVector) == 0 {
		return nil, nil
	}

	records, err := r.embeddings.Fetch(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	hits := linq.Map(records, func(record db.EmbeddingModel) Hit {
		return Hit{Record: record, Score: embedding.CosineSimilarity(queryVector, record.Vector)}
	})

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > r.topK {
		hits = hits[:r.topK]
	}
	return hits, nil
}
