package wordlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCorpus(t *testing.T) {
	words := Default()
	if len(words) != 200 {
		t.Fatalf("expected 200 built-in words, got %d", len(words))
	}
	words[0] = "mutated"
	if Default()[0] != "the" {
		t.Fatalf("Default must return a copy")
	}
}

func TestLoadWordsSkipsBlankAndMultiWord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("alpha\n\n  beta  \ngamma delta\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(words) != 2 || words[0] != "alpha" || words[1] != "beta" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadWords(path); err == nil {
		t.Fatalf("expected error for empty word list")
	}
}

func TestResolveDefaultsToBuiltIn(t *testing.T) {
	words, err := Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(words) == 0 {
		t.Fatalf("expected built-in corpus")
	}
}
