package generator

import "testing"

func TestWordsDrawFromCorpus(t *testing.T) {
	corpus := []string{"the", "be", "of"}
	gen := NewWithSeed(corpus, 1)
	words := gen.Words(150)
	if len(words) != 150 {
		t.Fatalf("expected 150 words, got %d", len(words))
	}
	allowed := map[string]bool{"the": true, "be": true, "of": true}
	for _, w := range words {
		if !allowed[w] {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestWordsDeterministicForSeed(t *testing.T) {
	corpus := []string{"a", "b", "c", "d", "e"}
	first := NewWithSeed(corpus, 42).Words(20)
	second := NewWithSeed(corpus, 42).Words(20)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded generators diverged at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestWordsEmptyCorpus(t *testing.T) {
	if got := New(nil).Words(10); len(got) != 0 {
		t.Fatalf("expected no words from empty corpus, got %v", got)
	}
}
