package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/RAGChat/internal/domain/chatModel"
)

// Chunker slides a fixed window of Length runes over the text, stepping
// Length-Overlap each time, so consecutive chunks share exactly Overlap runes.
// The final chunk may be shorter. Counting runes keeps multi-byte text intact.
type Chunker struct {
	Length  int
	Overlap int
}

func New(length int, overlap int) (*Chunker, error) {
	if length <= 0 {
		return nil, fmt.Errorf("chunk length must be positive, got %d", length)
	}
	if overlap < 0 || overlap >= length {
		return nil, fmt.Errorf("overlap must be in [0, length), got %d for length %d", overlap, length)
	}
	return &Chunker{Length: length, Overlap: overlap}, nil
}

type Span struct {
	Text    string
	Ordinal int
	Start   int //rune offset into the source text
}

// Split covers the input in order. Empty input yields no spans; input shorter
// than the window yields a single span.
func (c *Chunker) Split(text string) ([]Span, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", chatModel.ErrIngestion)
	}
	if strings.ContainsRune(text, 0) {
		return nil, fmt.Errorf("%w: text contains binary content", chatModel.ErrIngestion)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	var spans []Span
	start := 0
	for ordinal := 0; ; ordinal++ {
		end := start + c.Length
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, Span{
			Text:    string(runes[start:end]),
			Ordinal: ordinal,
			Start:   start,
		})
		if end == len(runes) {
			return spans, nil
		}
		start = end - c.Overlap
	}
}
