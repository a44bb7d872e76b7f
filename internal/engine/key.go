package engine

import "unicode"

// KeyKind classifies a keystroke.
type KeyKind int

// Keystroke kinds.
const (
	KeyOther KeyKind = iota
	KeyChar
	KeySpace
	KeyBackspace
)

// Key is one input event.
type Key struct {
	Kind KeyKind
	Rune rune
}

// CharKey returns a key event for r, classifying spaces and control runes.
func CharKey(r rune) Key {
	return Key{Kind: KeyChar, Rune: r}.normalize()
}

// SpaceKey returns a space key event.
func SpaceKey() Key { return Key{Kind: KeySpace, Rune: ' '} }

// BackspaceKey returns a backspace key event.
func BackspaceKey() Key { return Key{Kind: KeyBackspace} }

func (k Key) normalize() Key {
	if k.Kind != KeyChar {
		return k
	}
	switch {
	case k.Rune == ' ':
		return SpaceKey()
	case unicode.IsSpace(k.Rune) || !unicode.IsPrint(k.Rune):
		return Key{Kind: KeyOther, Rune: k.Rune}
	default:
		return k
	}
}
