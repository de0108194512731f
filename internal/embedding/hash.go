package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/rcliao/recall/internal/vecmath"
)

// HashEmbedder projects bag-of-words token hashes into a fixed number of
// signed buckets. It needs no model or network and is stable across runs.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash embedder producing dims components.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultDims
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	v := make(Vector, e.dims)
	for _, tok := range Tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := sum % uint32(e.dims)
		if sum&(1<<31) != 0 {
			v[bucket]--
		} else {
			v[bucket]++
		}
	}
	return vecmath.Normalize(v), nil
}

func (e *HashEmbedder) Dims() int { return e.dims }

func (e *HashEmbedder) ID() string { return fmt.Sprintf("hash-fnv1a-%d", e.dims) }

// Tokenize lower-cases text, turns every non letter/digit rune into
// whitespace and splits on it. Compatibility forms are folded first so
// full-width and ligature variants produce the same tokens.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
