package engine

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"
)

type manualTicker struct {
	c       chan time.Time
	stopped chan struct{}
}

func (m *manualTicker) C() <-chan time.Time { return m.c }

func (m *manualTicker) Stop() {
	select {
	case <-m.stopped:
	default:
		close(m.stopped)
	}
}

type tickerFactory struct {
	created chan *manualTicker
}

func newTickerFactory() *tickerFactory {
	return &tickerFactory{created: make(chan *manualTicker, 4)}
}

func (f *tickerFactory) New(time.Duration) Ticker {
	t := &manualTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	f.created <- t
	return t
}

type finishSignal struct {
	done chan model.Result
}

func (f finishSignal) OnSnapshot(Snapshot)       {}
func (f finishSignal) OnFinish(res model.Result) { f.done <- res }

func waitTicker(t *testing.T, f *tickerFactory) *manualTicker {
	t.Helper()
	select {
	case tk := <-f.created:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker was not created")
		return nil
	}
}

func waitStopped(t *testing.T, tk *manualTicker) {
	t.Helper()
	select {
	case <-tk.stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker was not stopped")
	}
}

func startDriver(t *testing.T, e *Engine, f *tickerFactory) (*Driver, context.CancelFunc, chan error) {
	t.Helper()
	d := NewDriver(e, f.New)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- d.Run(ctx)
	}()
	t.Cleanup(cancel)
	return d, cancel, errc
}

func TestDriverTicksUntilTimedFinish(t *testing.T) {
	sig := finishSignal{done: make(chan model.Result, 1)}
	e, err := New(Timed(2), fixedWords{"cat"}, WithObserver(sig))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f := newTickerFactory()
	d, _, _ := startDriver(t, e, f)
	ctx := context.Background()

	if err := d.Key(ctx, CharKey('c')); err != nil {
		t.Fatalf("key: %v", err)
	}
	tk := waitTicker(t, f)
	tk.c <- time.Now()
	tk.c <- time.Now()

	select {
	case res := <-sig.done:
		if res.DurationSeconds != 2 || res.CorrectChars != 1 {
			t.Fatalf("unexpected result %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not finish")
	}
	waitStopped(t, tk)
}

func TestDriverStopsTickerOnReset(t *testing.T) {
	e, err := New(CountUp(), fixedWords{"cat"})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f := newTickerFactory()
	d, _, _ := startDriver(t, e, f)
	ctx := context.Background()

	if err := d.Key(ctx, CharKey('c')); err != nil {
		t.Fatalf("key: %v", err)
	}
	tk := waitTicker(t, f)
	if err := d.Reset(ctx, CountUp()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	waitStopped(t, tk)

	if err := d.Key(ctx, CharKey('c')); err != nil {
		t.Fatalf("key: %v", err)
	}
	next := waitTicker(t, f)
	if next == tk {
		t.Fatalf("expected a fresh ticker for the new session")
	}
}

func TestDriverStopsTickerOnFinishAndCancel(t *testing.T) {
	e, err := New(CountUp(), fixedWords{"cat"})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f := newTickerFactory()
	d, cancel, errc := startDriver(t, e, f)
	ctx := context.Background()

	if err := d.Key(ctx, CharKey('c')); err != nil {
		t.Fatalf("key: %v", err)
	}
	tk := waitTicker(t, f)
	if err := d.Finish(ctx); err != nil {
		t.Fatalf("finish: %v", err)
	}
	waitStopped(t, tk)

	if err := d.Reset(ctx, CountUp()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := d.Key(ctx, CharKey('c')); err != nil {
		t.Fatalf("key: %v", err)
	}
	second := waitTicker(t, f)
	cancel()
	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("driver did not exit")
	}
	waitStopped(t, second)
}

func TestDriverStartWithoutKeystroke(t *testing.T) {
	sig := finishSignal{done: make(chan model.Result, 1)}
	e, err := New(Timed(1), fixedWords{"cat"}, WithObserver(sig))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f := newTickerFactory()
	d, _, _ := startDriver(t, e, f)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	tk := waitTicker(t, f)
	tk.c <- time.Now()

	select {
	case res := <-sig.done:
		if res.DurationSeconds != 1 || res.CorrectChars != 0 {
			t.Fatalf("unexpected result %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not finish")
	}
	waitStopped(t, tk)
}
