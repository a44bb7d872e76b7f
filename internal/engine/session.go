// Package engine implements the typing-test state machine.
//
// A Session is a value: every transition returns the next Session and a
// Transition describing what happened, leaving the receiver untouched. The
// Engine type wraps a Session for hosts that want observers and a result
// callback, and Driver runs an Engine off channels with its own ticker.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/typeroo/internal/model"
)

// SessionWords is the number of words sampled for Timed and CountUp sessions.
const SessionWords = 150

var (
	// ErrNoContent reports a session that has nothing to type.
	ErrNoContent = errors.New("no content to type")
	// ErrInvalidDuration reports a timed source without a positive duration.
	ErrInvalidDuration = errors.New("duration must be greater than 0")
)

// Status is the lifecycle state of a Session.
type Status int

// Lifecycle states.
const (
	StatusIdle Status = iota
	StatusActive
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the judgment recorded for a committed word.
type Outcome uint8

// Word outcomes.
const (
	OutcomeCorrect Outcome = iota + 1
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "pending"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Source configures where a session's words come from and how its clock runs.
// Duration is only meaningful for timed sources.
type Source struct {
	Mode     model.Mode
	Duration int
	Text     string
	TextID   int64
}

// Timed returns a countdown source of the given length in seconds.
func Timed(seconds int) Source {
	return Source{Mode: model.ModeTimed, Duration: seconds}
}

// CountUp returns an open-ended source; the host decides when it finishes.
func CountUp() Source {
	return Source{Mode: model.ModeCountUp}
}

// FixedText returns a source typing exactly the words of text.
func FixedText(text string) Source {
	return Source{Mode: model.ModeFixedText, Text: text}
}

// StoredText returns a FixedText source for a saved custom text.
func StoredText(t model.CustomText) Source {
	return Source{Mode: model.ModeFixedText, Text: t.Content, TextID: t.ID}
}

// WordSource supplies sampled words for Timed and CountUp sessions.
type WordSource interface {
	Words(count int) []string
}

// Transition describes the effect of applying one event to a Session.
type Transition struct {
	Changed   bool
	Started   bool
	Committed bool
	Finished  bool
}

func (t Transition) merge(o Transition) Transition {
	return Transition{
		Changed:   t.Changed || o.Changed,
		Started:   t.Started || o.Started,
		Committed: t.Committed || o.Committed,
		Finished:  t.Finished || o.Finished,
	}
}

// Session is the full state of one test run.
type Session struct {
	id        uint64
	source    Source
	words     []string
	wordIndex int
	input     string
	outcomes  []Outcome
	correct   int
	incorrect int
	clock     int
	status    Status
	startedAt time.Time
	endedAt   time.Time
	metrics   model.Metrics
}

// NewSession builds an Idle session for src. Sampled sources draw
// SessionWords words from gen; gen may be nil for FixedText.
//
// When there is nothing to type the returned session is still valid but can
// never start, and the error is ErrNoContent.
func NewSession(id uint64, src Source, gen WordSource) (Session, error) {
	s := Session{id: id, source: src}
	switch src.Mode {
	case model.ModeTimed:
		if src.Duration <= 0 {
			return Session{}, ErrInvalidDuration
		}
		s.clock = src.Duration
		s.words = sample(gen)
	case model.ModeCountUp:
		s.source.Duration = 0
		s.words = sample(gen)
	case model.ModeFixedText:
		s.source.Duration = 0
		s.words = strings.Fields(src.Text)
	default:
		return Session{}, fmt.Errorf("unknown mode %q", src.Mode)
	}
	if len(s.words) == 0 {
		return s, ErrNoContent
	}
	return s, nil
}

func sample(gen WordSource) []string {
	if gen == nil {
		return nil
	}
	return gen.Words(SessionWords)
}

// ID identifies the session; ticks carry it so stale ones can be dropped.
func (s Session) ID() uint64 { return s.id }

// Source returns the configuration the session was built from.
func (s Session) Source() Source { return s.source }

// Mode returns the session's test mode.
func (s Session) Mode() model.Mode { return s.source.Mode }

// Status returns the lifecycle state.
func (s Session) Status() Status { return s.status }

// Words returns a copy of the word sequence.
func (s Session) Words() []string { return slices.Clone(s.words) }

// WordCount returns the number of words in the session.
func (s Session) WordCount() int { return len(s.words) }

// Word returns the word at i, or "" when out of range.
func (s Session) Word(i int) string {
	if i < 0 || i >= len(s.words) {
		return ""
	}
	return s.words[i]
}

// WordIndex returns the index of the word being typed.
func (s Session) WordIndex() int { return s.wordIndex }

// Input returns the keystrokes typed for the active word.
func (s Session) Input() string { return s.input }

// Outcome returns the judgment for a committed word.
func (s Session) Outcome(i int) (Outcome, bool) {
	if i < 0 || i >= len(s.outcomes) {
		return 0, false
	}
	return s.outcomes[i], true
}

// Outcomes returns a copy of all committed word outcomes in order.
func (s Session) Outcomes() []Outcome { return slices.Clone(s.outcomes) }

// CorrectChars returns the running count of correct keystrokes.
func (s Session) CorrectChars() int { return s.correct }

// IncorrectChars returns the running count of incorrect keystrokes.
func (s Session) IncorrectChars() int { return s.incorrect }

// TimeRemaining returns the countdown value; zero for untimed sessions.
func (s Session) TimeRemaining() int {
	if s.source.Mode != model.ModeTimed {
		return 0
	}
	return s.clock
}

// Elapsed returns the seconds counted so far.
func (s Session) Elapsed() int {
	if s.source.Mode == model.ModeTimed {
		return s.source.Duration - s.clock
	}
	return s.clock
}

// StartedAt returns when the session became Active.
func (s Session) StartedAt() time.Time { return s.startedAt }

// EndedAt returns when the session finished.
func (s Session) EndedAt() time.Time { return s.endedAt }

// CanStart reports whether a keystroke or Start would activate the session.
func (s Session) CanStart() bool {
	if s.status != StatusIdle || len(s.words) == 0 {
		return false
	}
	if s.source.Mode == model.ModeTimed && s.clock <= 0 {
		return false
	}
	return true
}

// Metrics returns the final metrics once the session has finished.
func (s Session) Metrics() (model.Metrics, bool) {
	return s.metrics, s.status == StatusFinished
}

// Result returns the persistable record of a finished session.
func (s Session) Result() (model.Result, bool) {
	if s.status != StatusFinished {
		return model.Result{}, false
	}
	res := model.Result{
		Mode:      s.source.Mode,
		Duration:  s.source.Duration,
		TextID:    s.source.TextID,
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
		Metrics:   s.metrics,
	}
	for _, o := range s.outcomes {
		if o == OutcomeCorrect {
			res.CorrectWords++
		} else {
			res.IncorrectWords++
		}
	}
	return res, true
}

// Start activates an Idle session.
func (s Session) Start(now time.Time) (Session, Transition) {
	if !s.CanStart() {
		return s, Transition{}
	}
	s.status = StatusActive
	s.startedAt = now
	return s, Transition{Changed: true, Started: true}
}

// ApplyKey applies one keystroke. A printable key starts an Idle session.
func (s Session) ApplyKey(k Key, now time.Time) (Session, Transition) {
	k = k.normalize()
	if s.status == StatusFinished {
		return s, Transition{}
	}
	if k.Kind != KeyChar && k.Kind != KeySpace {
		return s, Transition{}
	}
	var tr Transition
	if s.status == StatusIdle {
		if !s.CanStart() {
			return s, Transition{}
		}
		s, tr = s.Start(now)
	}
	var next Transition
	if k.Kind == KeySpace {
		s, next = s.commit(now)
	} else {
		s, next = s.appendRune(k.Rune, now)
	}
	return s, tr.merge(next)
}

func (s Session) appendRune(r rune, now time.Time) (Session, Transition) {
	target := s.words[s.wordIndex]
	pos := utf8.RuneCountInString(s.input)
	s.input += string(r)
	if expected, ok := runeAt(target, pos); ok && expected == r {
		s.correct++
	} else {
		s.incorrect++
	}
	tr := Transition{Changed: true}
	if s.source.Mode == model.ModeFixedText && s.onLastWord() && s.input == target {
		s.outcomes = append(slices.Clone(s.outcomes), OutcomeCorrect)
		s.input = ""
		s = s.finish(now)
		tr.Committed = true
		tr.Finished = true
	}
	return s, tr
}

func (s Session) commit(now time.Time) (Session, Transition) {
	if strings.TrimSpace(s.input) == "" {
		return s, Transition{}
	}
	outcome := OutcomeIncorrect
	if s.input == s.words[s.wordIndex] {
		outcome = OutcomeCorrect
	}
	s.outcomes = append(slices.Clone(s.outcomes), outcome)
	s.input = ""
	tr := Transition{Changed: true, Committed: true}
	if s.onLastWord() {
		s = s.finish(now)
		tr.Finished = true
		return s, tr
	}
	s.wordIndex++
	return s, tr
}

func (s Session) onLastWord() bool {
	return s.wordIndex == len(s.words)-1
}

// Tick advances the clock by one second while Active. A timed session
// finishes when its countdown reaches zero.
func (s Session) Tick(now time.Time) (Session, Transition) {
	if s.status != StatusActive {
		return s, Transition{}
	}
	tr := Transition{Changed: true}
	if s.source.Mode != model.ModeTimed {
		s.clock++
		return s, tr
	}
	s.clock--
	if s.clock <= 0 {
		s.clock = 0
		s = s.finish(now)
		tr.Finished = true
	}
	return s, tr
}

// Finish ends an Active session. It has no effect in any other state.
func (s Session) Finish(now time.Time) (Session, Transition) {
	if s.status != StatusActive {
		return s, Transition{}
	}
	return s.finish(now), Transition{Changed: true, Finished: true}
}

func (s Session) finish(now time.Time) Session {
	s.status = StatusFinished
	s.endedAt = now
	s.metrics = ComputeMetrics(s.correct, s.incorrect, s.durationSeconds())
	return s
}

func (s Session) durationSeconds() int {
	d := s.Elapsed()
	if d <= 0 {
		return 1
	}
	return d
}

func runeAt(word string, pos int) (rune, bool) {
	i := 0
	for _, r := range word {
		if i == pos {
			return r, true
		}
		i++
	}
	return 0, false
}
