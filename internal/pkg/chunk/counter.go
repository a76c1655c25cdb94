package chunk

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// TokenCounter reports how many tokens a piece of text occupies. Exact
// agreement with the embedding provider's tokenizer is not required; a small
// margin is tolerated everywhere the count is used.
type TokenCounter interface {
	Count(text string) int
}

// FieldCounter counts whitespace-delimited fields. Deterministic and
// dependency-free; used as the fallback and in tests.
type FieldCounter struct{}

func (FieldCounter) Count(text string) int {
	return len(strings.Fields(text))
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// NewTokenCounter returns a cl100k_base counter, falling back to field
// counting when the encoding cannot be loaded (e.g. no network to fetch the
// vocabulary).
func NewTokenCounter() TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Warn().Err(err).Msg("cl100k_base encoding unavailable, counting whitespace fields instead")
		return FieldCounter{}
	}
	return tiktokenCounter{enc: enc}
}
