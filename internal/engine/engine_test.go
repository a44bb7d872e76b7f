package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"
)

type recorder struct {
	snapshots []Snapshot
	results   []model.Result
}

func (r *recorder) OnSnapshot(s Snapshot)     { r.snapshots = append(r.snapshots, s) }
func (r *recorder) OnFinish(res model.Result) { r.results = append(r.results, res) }

// countingWords returns a distinct batch on every call.
type countingWords struct {
	calls int
}

func (c *countingWords) Words(int) []string {
	c.calls++
	return []string{fmt.Sprintf("w%d", c.calls), "and", "more"}
}

func fixedClock() func() time.Time {
	return func() time.Time { return epoch }
}

func TestEngineNotifiesObservers(t *testing.T) {
	rec := &recorder{}
	e, err := New(Timed(10), fixedWords{"the", "cat"}, WithClock(fixedClock()), WithObserver(rec))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	initial := len(rec.snapshots)
	e.Key(CharKey('t'))
	e.Key(BackspaceKey())
	e.Key(CharKey('h'))
	if got := len(rec.snapshots) - initial; got != 2 {
		t.Fatalf("expected 2 snapshots for 2 state changes, got %d", got)
	}
	last := rec.snapshots[len(rec.snapshots)-1]
	if last.Status != StatusActive || last.CurrentInput != "th" {
		t.Fatalf("unexpected snapshot %+v", last)
	}
}

func TestEngineFinishesExactlyOnce(t *testing.T) {
	rec := &recorder{}
	e, err := New(Timed(2), fixedWords{"go"}, WithClock(fixedClock()), WithObserver(rec))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.Key(CharKey('g'))
	id := e.Session().ID()
	e.Tick(id)
	e.Tick(id)
	e.Tick(id)
	e.Finish()
	if len(rec.results) != 1 {
		t.Fatalf("expected one result, got %d", len(rec.results))
	}
	if rec.results[0].DurationSeconds != 2 {
		t.Fatalf("expected duration 2, got %d", rec.results[0].DurationSeconds)
	}
	if res, ok := e.Result(); !ok || res.CorrectChars != 1 {
		t.Fatalf("expected engine result, got %+v", res)
	}
}

func TestEngineResetAfterFinish(t *testing.T) {
	gen := &countingWords{}
	e, err := New(CountUp(), gen, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	firstID := e.Session().ID()
	firstWord := e.Session().Word(0)
	e.Key(CharKey('x'))
	e.Finish()
	if e.Session().Status() != StatusFinished {
		t.Fatalf("expected finished session")
	}
	if _, err := e.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	s := e.Session()
	if s.Status() != StatusIdle || s.CorrectChars() != 0 || s.IncorrectChars() != 0 {
		t.Fatalf("expected fresh idle session, got %+v", s.Snapshot())
	}
	if s.ID() == firstID {
		t.Fatalf("expected a new session id")
	}
	if s.Word(0) == firstWord {
		t.Fatalf("expected newly sampled words")
	}
}

func TestEngineDropsStaleTicks(t *testing.T) {
	e, err := New(Timed(30), fixedWords{"cat"}, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.Key(CharKey('c'))
	staleID := e.Session().ID()
	if _, err := e.Reset(Timed(30)); err != nil {
		t.Fatalf("reset: %v", err)
	}
	e.Key(CharKey('c'))
	if tr := e.Tick(staleID); tr.Changed {
		t.Fatalf("tick for previous session must be dropped")
	}
	if e.Session().TimeRemaining() != 30 {
		t.Fatalf("stale tick changed the clock")
	}
	if tr := e.Tick(e.Session().ID()); !tr.Changed {
		t.Fatalf("tick for current session must apply")
	}
}

func TestEngineResetKeepsSessionOnInvalidConfig(t *testing.T) {
	e, err := New(Timed(30), fixedWords{"cat"})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	id := e.Session().ID()
	if _, err := e.Reset(Timed(-1)); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if e.Session().ID() != id || e.Source().Duration != 30 {
		t.Fatalf("invalid reset must keep current session and source")
	}
}

func TestEngineEmptyTextSurfacesNoContent(t *testing.T) {
	e, err := New(FixedText("   "), nil)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if e == nil {
		t.Fatalf("expected engine alongside ErrNoContent")
	}
	if tr := e.Key(CharKey('a')); tr.Changed {
		t.Fatalf("engine without content must not start")
	}
	if tr := e.Start(); tr.Started {
		t.Fatalf("engine without content must not start")
	}
}

func TestEngineNewRejectsInvalidDuration(t *testing.T) {
	e, err := New(Timed(0), fixedWords{"a"})
	if !errors.Is(err, ErrInvalidDuration) || e != nil {
		t.Fatalf("expected nil engine and ErrInvalidDuration, got %v / %v", e, err)
	}
}

func TestEngineStoredTextCarriesID(t *testing.T) {
	rec := &recorder{}
	text := model.CustomText{ID: 7, Content: "go"}
	e, err := New(StoredText(text), nil, WithClock(fixedClock()), WithObserver(rec))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.Key(CharKey('g'))
	e.Key(CharKey('o'))
	if len(rec.results) != 1 {
		t.Fatalf("expected result after typing the whole text")
	}
	if rec.results[0].TextID != 7 || rec.results[0].Mode != model.ModeFixedText {
		t.Fatalf("unexpected result %+v", rec.results[0])
	}
}
