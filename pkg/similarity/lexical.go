// Package similarity scores how alike two pieces of post text are. Scores
// are only meaningful relative to each other.
package similarity

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// Lexical compares texts by the cosine of their character-bigram counts.
// It needs no model and handles Chinese text, where word boundaries are not
// marked by spaces.
type Lexical struct{}

// Similarity returns a score in [0, 1].
func (Lexical) Similarity(_ context.Context, a, b string) (float64, error) {
	return cosineCounts(bigrams(a), bigrams(b)), nil
}

func bigrams(s string) map[string]float64 {
	var runes []rune
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			runes = append(runes, r)
		}
	}
	out := make(map[string]float64)
	if len(runes) == 1 {
		out[string(runes)]++
		return out
	}
	for i := 0; i+1 < len(runes); i++ {
		out[string(runes[i:i+2])]++
	}
	return out
}

func cosineCounts(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for k, v := range a {
		na += v * v
		dot += v * b[k]
	}
	for _, v := range b {
		nb += v * v
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty or they differ in length.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
