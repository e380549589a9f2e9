// Package docload reads policy documents and splits them into overlapping
// chunks sized for embedding.
package docload

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of trailing characters carried from
	// one chunk into the start of the next.
	DefaultChunkOverlap = 200
)

// Chunk is a bounded slice of source text. Index records its position in the
// source document.
type Chunk struct {
	Text  string
	Index int
}

// Load reads the whole document at path.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "load document %s", path)
	}
	return string(data), nil
}

// Split cuts text into chunks of at most size characters, carrying the
// trailing overlap characters of each chunk into the start of the next.
// Cut points prefer paragraph breaks, then sentence ends, then spaces.
// The whole slice is materialized; empty input yields no chunks.
//
// Chunks are raw substrings of text: concatenating the first chunk with every
// later chunk minus its leading overlap reconstructs the input exactly.
func Split(text string, size, overlap int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if text == "" {
		return nil
	}

	var chunks []Chunk
	start, index := 0, 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutPoint(text, start, end, overlap)
		}
		chunks = append(chunks, Chunk{Text: text[start:end], Index: index})
		index++
		if end == len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}

// cutPoint searches backwards from end for a natural boundary, never dropping
// below start+overlap+1 so every chunk still advances past the overlap.
func cutPoint(text string, start, end, overlap int) int {
	floor := start + overlap + 1
	if floor >= end {
		return end
	}
	window := text[floor:end]
	for _, sep := range []string{"\n\n", ". ", "\n", " "} {
		if i := strings.LastIndex(window, sep); i >= 0 {
			return floor + i + len(sep)
		}
	}
	return end
}
