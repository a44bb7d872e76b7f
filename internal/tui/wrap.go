package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typeroo/internal/engine"
)

type styledWord struct {
	s     string
	width int
}

type wordState int

const (
	wordPending wordState = iota
	wordCurrent
	wordCorrect
	wordIncorrect
)

// styleWord renders one word. For the current word each typed rune is shown
// against its target; runes typed past the end are shown as typed.
func styleWord(target, input string, state wordState) styledWord {
	switch state {
	case wordCorrect:
		return styledWord{s: correctStyle.Render(target), width: runewidth.StringWidth(target)}
	case wordIncorrect:
		return styledWord{s: incorrectStyle.Render(target), width: runewidth.StringWidth(target)}
	case wordPending:
		return styledWord{s: pendingStyle.Render(target), width: runewidth.StringWidth(target)}
	}

	want := []rune(target)
	typed := []rune(input)
	var b strings.Builder
	width := 0
	for i := 0; i < max(len(want), len(typed)); i++ {
		var r rune
		style := currentWordStyle
		switch {
		case i < len(typed) && i < len(want):
			r = want[i]
			style = correctStyle
			if typed[i] != want[i] {
				style = incorrectStyle
			}
		case i < len(typed):
			r = typed[i]
			style = extraStyle
		default:
			r = want[i]
			if i == len(typed) {
				style = cursorStyle
			}
		}
		b.WriteString(style.Render(string(r)))
		width += runewidth.RuneWidth(r)
	}
	return styledWord{s: b.String(), width: width}
}

// styleSession renders every word of s according to its outcome.
func styleSession(s engine.Session) []styledWord {
	words := s.Words()
	out := make([]styledWord, len(words))
	for i, w := range words {
		state := wordPending
		if outcome, ok := s.Outcome(i); ok {
			state = wordIncorrect
			if outcome == engine.OutcomeCorrect {
				state = wordCorrect
			}
		} else if i == s.WordIndex() && s.Status() != engine.StatusFinished {
			state = wordCurrent
		}
		input := ""
		if state == wordCurrent {
			input = s.Input()
		}
		out[i] = styleWord(w, input, state)
	}
	return out
}

// layoutLines greedily packs words separated by single spaces into lines of
// at most width columns and returns the word indexes of each line. A word
// wider than width gets a line of its own.
func layoutLines(words []styledWord, width int) [][]int {
	var lines [][]int
	var line []int
	lineWidth := 0
	for i, w := range words {
		need := w.width
		if len(line) > 0 {
			need++
		}
		if width > 0 && len(line) > 0 && lineWidth+need > width {
			lines = append(lines, line)
			line = nil
			lineWidth = 0
			need = w.width
		}
		line = append(line, i)
		lineWidth += need
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// visibleLines returns count lines around the line holding word current,
// keeping one already typed line above it.
func visibleLines(lines [][]int, current, count int) [][]int {
	at := 0
	for i, line := range lines {
		if len(line) > 0 && current >= line[0] && current <= line[len(line)-1] {
			at = i
			break
		}
		if len(line) > 0 && current > line[len(line)-1] {
			at = i
		}
	}
	start := max(at-1, 0)
	end := min(start+count, len(lines))
	return lines[start:end]
}

func renderLines(words []styledWord, lines [][]int) string {
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		parts := make([]string, len(line))
		for i, idx := range line {
			parts[i] = words[idx].s
		}
		rendered = append(rendered, strings.Join(parts, " "))
	}
	return strings.Join(rendered, "\n")
}
