package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typeroo/internal/engine"
)

func TestStyleWordCurrent(t *testing.T) {
	w := styleWord("cat", "cx", wordCurrent)
	want := correctStyle.Render("c") + incorrectStyle.Render("a") + cursorStyle.Render("t")
	if w.s != want {
		t.Fatalf("unexpected current word rendering %q", w.s)
	}
	if w.width != 3 {
		t.Fatalf("expected width 3, got %d", w.width)
	}
}

func TestStyleWordExtraRunes(t *testing.T) {
	w := styleWord("go", "gone", wordCurrent)
	want := correctStyle.Render("g") + correctStyle.Render("o") + extraStyle.Render("n") + extraStyle.Render("e")
	if w.s != want {
		t.Fatalf("unexpected rendering %q", w.s)
	}
	if w.width != 4 {
		t.Fatalf("expected typed overflow to widen the word, got %d", w.width)
	}
}

func TestStyleWordCommitted(t *testing.T) {
	if got := styleWord("dog", "", wordIncorrect); got.s != incorrectStyle.Render("dog") {
		t.Fatalf("expected incorrect style, got %q", got.s)
	}
	if got := styleWord("dog", "", wordCorrect); got.s != correctStyle.Render("dog") {
		t.Fatalf("expected correct style, got %q", got.s)
	}
}

func TestStyleSessionStates(t *testing.T) {
	s, err := engine.NewSession(1, engine.FixedText("the cat sat"), nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	now := time.Now()
	for _, k := range []engine.Key{
		engine.CharKey('t'), engine.CharKey('h'), engine.CharKey('e'), engine.SpaceKey(),
		engine.CharKey('c'), engine.CharKey('o'), engine.CharKey('t'), engine.SpaceKey(),
		engine.CharKey('s'),
	} {
		s, _ = s.ApplyKey(k, now)
	}
	words := styleSession(s)
	if words[0].s != correctStyle.Render("the") {
		t.Fatalf("expected first word correct")
	}
	if words[1].s != incorrectStyle.Render("cat") {
		t.Fatalf("expected second word incorrect")
	}
	if words[2].s != styleWord("sat", "s", wordCurrent).s {
		t.Fatalf("expected third word current")
	}
}

func plain(texts ...string) []styledWord {
	out := make([]styledWord, len(texts))
	for i, s := range texts {
		out[i] = styledWord{s: s, width: len(s)}
	}
	return out
}

func TestLayoutLines(t *testing.T) {
	words := plain("one", "two", "three", "four", "extraordinary")
	lines := layoutLines(words, 9)
	want := [][]int{{0, 1}, {2}, {3}, {4}}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), lines)
	}
	for i := range want {
		if len(lines[i]) != len(want[i]) || lines[i][0] != want[i][0] {
			t.Fatalf("line %d: expected %v, got %v", i, want[i], lines[i])
		}
	}
	if got := renderLines(words, lines[:1]); got != "one two" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestLayoutLinesUnbounded(t *testing.T) {
	lines := layoutLines(plain("a", "b", "c"), 0)
	if len(lines) != 1 || len(lines[0]) != 3 {
		t.Fatalf("expected a single line, got %v", lines)
	}
}

func TestVisibleLinesKeepsOneLineAbove(t *testing.T) {
	lines := [][]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {8}}
	got := visibleLines(lines, 4, 3)
	if len(got) != 3 || got[0][0] != 2 || got[2][0] != 6 {
		t.Fatalf("unexpected window %v", got)
	}
	first := visibleLines(lines, 0, 3)
	if first[0][0] != 0 {
		t.Fatalf("expected window to start at the top, got %v", first)
	}
	end := visibleLines(lines, 9, 3)
	if end[len(end)-1][0] != 8 {
		t.Fatalf("expected window to end at last line, got %v", end)
	}
	if !strings.Contains(renderLines(plain("a", "b"), [][]int{{0, 1}}), "a b") {
		t.Fatalf("expected words joined by spaces")
	}
}
