package engine

import (
	"context"
	"time"
)

// TickInterval is the period of the session clock.
const TickInterval = time.Second

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker with the given period.
type TickerFunc func(time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type resetRequest struct {
	src  Source
	errc chan error
}

// Driver feeds an Engine from channels in a single goroutine. The clock
// ticker exists only while the session is Active.
type Driver struct {
	engine    *Engine
	newTicker TickerFunc
	keys      chan Key
	start     chan struct{}
	finish    chan struct{}
	resets    chan resetRequest
}

// NewDriver returns a Driver for e. A nil newTicker uses NewTimeTicker.
func NewDriver(e *Engine, newTicker TickerFunc) *Driver {
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Driver{
		engine:    e,
		newTicker: newTicker,
		keys:      make(chan Key),
		start:     make(chan struct{}),
		finish:    make(chan struct{}),
		resets:    make(chan resetRequest),
	}
}

// Key queues a keystroke.
func (d *Driver) Key(ctx context.Context, k Key) error {
	select {
	case d.keys <- k:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start requests an explicit start of an Idle session.
func (d *Driver) Start(ctx context.Context) error {
	select {
	case d.start <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finish requests an explicit finish.
func (d *Driver) Finish(ctx context.Context) error {
	select {
	case d.finish <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset replaces the session and waits for the engine's answer.
func (d *Driver) Reset(ctx context.Context, src Source) error {
	req := resetRequest{src: src, errc: make(chan error, 1)}
	select {
	case d.resets <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is done. The Engine must not be used
// elsewhere while Run is executing.
func (d *Driver) Run(ctx context.Context) error {
	var ticker Ticker
	var tickC <-chan time.Time
	stopTicker := func() {
		if ticker == nil {
			return
		}
		ticker.Stop()
		ticker = nil
		tickC = nil
	}
	defer stopTicker()

	sync := func() {
		if d.engine.Session().Status() != StatusActive {
			stopTicker()
			return
		}
		if ticker == nil {
			ticker = d.newTicker(TickInterval)
			tickC = ticker.C()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case k := <-d.keys:
			d.engine.Key(k)
			sync()
		case <-tickC:
			d.engine.Tick(d.engine.Session().ID())
			sync()
		case <-d.start:
			d.engine.Start()
			sync()
		case <-d.finish:
			d.engine.Finish()
			sync()
		case req := <-d.resets:
			stopTicker()
			_, err := d.engine.Reset(req.src)
			req.errc <- err
		}
	}
}
