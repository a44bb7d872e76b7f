// Package generator builds typing word sequences.
package generator

import (
	"math/rand"
	"time"
)

// Generator samples words uniformly from a corpus.
type Generator struct {
	rnd    *rand.Rand
	corpus []string
}

// New returns a Generator over corpus seeded with the current time.
func New(corpus []string) *Generator {
	return NewWithSeed(corpus, time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(corpus []string, seed int64) *Generator {
	return &Generator{
		rnd:    rand.New(rand.NewSource(seed)),
		corpus: corpus,
	}
}

// Words selects count words independently, with replacement.
// An empty corpus yields an empty slice.
func (g *Generator) Words(count int) []string {
	if count <= 0 || len(g.corpus) == 0 {
		return nil
	}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, g.corpus[g.rnd.Intn(len(g.corpus))])
	}
	return result
}

// CorpusSize reports how many distinct entries the generator draws from.
func (g *Generator) CorpusSize() int {
	return len(g.corpus)
}
