package engine

import (
	"errors"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"
)

// Observer receives engine output. OnSnapshot runs after every state change;
// OnFinish runs exactly once per finished session.
type Observer interface {
	OnSnapshot(Snapshot)
	OnFinish(model.Result)
}

// Engine owns the current Session and is its only writer. It is not safe for
// concurrent use; hosts serialise calls (Bubble Tea's update loop, or Driver).
type Engine struct {
	source    Source
	gen       WordSource
	session   Session
	lastID    uint64
	now       func() time.Time
	observers []Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for start and end stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New builds an Engine with an Idle session for src. With ErrNoContent the
// Engine is still returned, holding a session that cannot start; any other
// error yields a nil Engine.
func New(src Source, gen WordSource, opts ...Option) (*Engine, error) {
	e := &Engine{gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if _, err := e.Reset(src); err != nil && !errors.Is(err, ErrNoContent) {
		return nil, err
	}
	return e, e.contentErr()
}

func (e *Engine) contentErr() error {
	if e.session.WordCount() == 0 {
		return ErrNoContent
	}
	return nil
}

// AddObserver registers an observer after construction.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Session returns the current session value.
func (e *Engine) Session() Session { return e.session }

// Source returns the configured source used by Restart.
func (e *Engine) Source() Source { return e.source }

// Snapshot returns the current snapshot.
func (e *Engine) Snapshot() Snapshot { return e.session.Snapshot() }

// Result returns the result of the current session once it has finished.
func (e *Engine) Result() (model.Result, bool) { return e.session.Result() }

// Start activates the session without a keystroke.
func (e *Engine) Start() Transition {
	next, tr := e.session.Start(e.now())
	return e.apply(next, tr)
}

// Key applies a keystroke.
func (e *Engine) Key(k Key) Transition {
	next, tr := e.session.ApplyKey(k, e.now())
	return e.apply(next, tr)
}

// Tick advances the clock for session id. Ticks addressed to an earlier
// session are dropped.
func (e *Engine) Tick(id uint64) Transition {
	if id != e.session.ID() {
		return Transition{}
	}
	next, tr := e.session.Tick(e.now())
	return e.apply(next, tr)
}

// Finish ends the active session. Repeated calls have no effect.
func (e *Engine) Finish() Transition {
	next, tr := e.session.Finish(e.now())
	return e.apply(next, tr)
}

// Reset discards the current session and builds a new Idle one from src,
// which becomes the configured source. On ErrInvalidDuration or an unknown
// mode the current session and source are kept.
func (e *Engine) Reset(src Source) (Transition, error) {
	next, err := NewSession(e.lastID+1, src, e.gen)
	if err != nil && !errors.Is(err, ErrNoContent) {
		return Transition{}, err
	}
	e.lastID++
	e.source = src
	tr := e.apply(next, Transition{Changed: true})
	return tr, err
}

// Restart resets using the configured source.
func (e *Engine) Restart() (Transition, error) {
	return e.Reset(e.source)
}

func (e *Engine) apply(next Session, tr Transition) Transition {
	e.session = next
	if !tr.Changed {
		return tr
	}
	snap := next.Snapshot()
	for _, o := range e.observers {
		o.OnSnapshot(snap)
	}
	if tr.Finished {
		if res, ok := next.Result(); ok {
			for _, o := range e.observers {
				o.OnFinish(res)
			}
		}
	}
	return tr
}
