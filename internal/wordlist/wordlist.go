// Package wordlist provides the test corpus and loads word lists from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

var common = []string{
	"the", "be", "of", "and", "a", "to", "in", "he", "have", "it", "that", "for", "they",
	"i", "with", "as", "not", "on", "she", "at", "by", "this", "we", "you", "do", "but",
	"from", "or", "which", "one", "would", "all", "will", "there", "say", "who", "make",
	"when", "can", "more", "if", "no", "man", "out", "other", "so", "what", "time", "up",
	"go", "about", "than", "into", "could", "state", "only", "new", "year", "some", "take",
	"come", "these", "know", "see", "use", "get", "like", "then", "first", "any", "work",
	"now", "may", "such", "give", "over", "think", "most", "even", "find", "day", "also",
	"after", "way", "many", "must", "look", "before", "great", "back", "through", "long",
	"where", "much", "should", "well", "people", "down", "own", "just", "because", "good",
	"each", "those", "feel", "seem", "how", "high", "too", "place", "little", "world",
	"very", "still", "nation", "hand", "old", "life", "tell", "write", "become", "here",
	"show", "house", "both", "between", "need", "mean", "call", "develop", "under", "last",
	"right", "move", "thing", "general", "school", "never", "same", "another", "begin",
	"while", "number", "part", "turn", "real", "leave", "might", "want", "point", "form",
	"off", "child", "few", "small", "since", "against", "ask", "late", "home", "interest",
	"large", "person", "end", "open", "public", "follow", "during", "present", "without",
	"again", "hold", "govern", "around", "possible", "head", "consider", "word", "program",
	"problem", "however", "lead", "system", "set", "order", "eye", "plan", "run", "keep",
	"face", "fact", "group", "play", "stand", "increase", "early", "course", "change",
	"help", "line",
}

// Default returns a copy of the built-in corpus of common short English words.
func Default() []string {
	out := make([]string, len(common))
	copy(out, common)
	return out
}

// LoadWords reads one word per line from the provided file path.
// Lines that cannot be typed as a single word are skipped.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	keep := Typeable()
	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !keep(line) {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// Resolve returns the corpus at path, or the built-in corpus when path is empty.
func Resolve(path string) ([]string, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadWords(path)
}
