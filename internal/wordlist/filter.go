package wordlist

import "unicode"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Typeable keeps non-empty words made of printable, non-space runes.
func Typeable() FilterFunc {
	return func(word string) bool {
		if word == "" {
			return false
		}
		for _, r := range word {
			if unicode.IsSpace(r) || !unicode.IsPrint(r) {
				return false
			}
		}
		return true
	}
}
