package workers

import "strings"

const (
	defaultChunkSize    = 500
	defaultChunkOverlap = 50
)

// Chunker splits recognized page text into overlapping word windows for
// embedding. Windows advance by size−overlap words; the trailing partial
// window is kept so no words fall off the end of a page.
type Chunker struct {
	size    int
	overlap int
}

func ProvideChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}
	return &Chunker{size: size, overlap: overlap}
}

func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.size - c.overlap
	var out []string
	for i := 0; i < len(words); i += stride {
		end := min(i+c.size, len(words))
		out = append(out, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}
