package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/typeroo/internal/engine"
	"github.com/verte-zerg/typeroo/internal/model"
	"github.com/verte-zerg/typeroo/internal/tui"
)

// Control bytes read from a raw terminal.
const (
	byteCtrlC     = 0x03
	byteEsc       = 0x1b
	byteBackspace = 0x7f
	byteCtrlH     = 0x08
	byteEnter     = '\r'
)

// lineView prints a one-line status for every snapshot. It runs on the
// Driver goroutine.
type lineView struct {
	w    io.Writer
	done chan model.Result
}

func (v *lineView) OnSnapshot(s engine.Snapshot) {
	clock := fmt.Sprintf("%3ds", s.Elapsed)
	if s.Mode == model.ModeTimed {
		clock = fmt.Sprintf("%3ds left", s.TimeRemaining)
	}
	_, _ = fmt.Fprintf(v.w, "\r\x1b[K%s  %3d wpm  %3d%%  %d/%d  %s",
		clock, s.LiveWPM, s.LiveAccuracy, s.WordIndex, s.WordCount, s.CurrentInput)
}

func (v *lineView) OnFinish(res model.Result) {
	select {
	case v.done <- res:
	default:
	}
}

// runPlain runs one test on the raw terminal without the full-screen UI.
func runPlain(ctx context.Context, src engine.Source, gen engine.WordSource, sinks []tui.NamedSink, opts []engine.Option) error {
	view := &lineView{w: os.Stdout, done: make(chan model.Result, 1)}
	e, err := engine.New(src, gen, append(opts, engine.WithObserver(view))...)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to enable raw mode: %w", err)
		}
		defer func() {
			if rerr := term.Restore(fd, state); rerr != nil {
				logErrf("failed to restore terminal: %v\n", rerr)
			}
		}()
	}

	fmt.Print(strings.Join(e.Session().Words(), " ") + "\r\n\r\n")
	logErrln("start typing; esc finishes, ctrl+c aborts\r")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	driver := engine.NewDriver(e, nil)
	runErr := make(chan error, 1)
	go func() {
		runErr <- driver.Run(ctx)
	}()
	go readKeys(ctx, cancel, bufio.NewReader(os.Stdin), driver)

	var res model.Result
	select {
	case res = <-view.done:
	case <-ctx.Done():
		fmt.Print("\r\n")
		return nil
	case err := <-runErr:
		return err
	}
	cancel()
	fmt.Print("\r\n\r\n")
	reportResult(os.Stdout, os.Stderr, res, sinks)
	return nil
}

// reportResult prints the final metrics, then hands the result to every
// sink. Sink failures are reported on errW and never hide the metrics.
func reportResult(w, errW io.Writer, res model.Result, sinks []tui.NamedSink) {
	_, _ = io.WriteString(w, formatResult(res))
	if len(sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	errs := make(chan string, len(sinks))
	for _, s := range sinks {
		go func(s tui.NamedSink) {
			if _, err := s.Sink.SaveResult(ctx, res); err != nil {
				errs <- fmt.Sprintf("%s: save failed: %v\r\n", s.Name, err)
				return
			}
			errs <- ""
		}(s)
	}
	for range sinks {
		if msg := <-errs; msg != "" {
			_, _ = io.WriteString(errW, msg)
		}
	}
}

// inputAction is what a chunk of raw terminal input asks for.
type inputAction int

const (
	actionNone inputAction = iota
	actionKey
	actionFinish
	actionQuit
)

// readInput decodes the next keystroke. A lone ESC finishes the test;
// ESC followed by buffered bytes is a terminal escape sequence (arrows,
// function keys) and is skipped.
func readInput(r *bufio.Reader) (inputAction, engine.Key, error) {
	ch, _, err := r.ReadRune()
	if err != nil {
		return actionNone, engine.Key{}, err
	}
	switch ch {
	case byteCtrlC:
		return actionQuit, engine.Key{}, nil
	case byteEnter:
		return actionFinish, engine.Key{}, nil
	case byteEsc:
		if r.Buffered() == 0 {
			return actionFinish, engine.Key{}, nil
		}
		skipEscapeSequence(r)
		return actionNone, engine.Key{}, nil
	case byteBackspace, byteCtrlH:
		return actionKey, engine.BackspaceKey(), nil
	default:
		return actionKey, engine.CharKey(ch), nil
	}
}

// skipEscapeSequence consumes a CSI (ESC [) or SS3 (ESC O) sequence up to
// its final byte, or the single byte of an Alt-modified key.
func skipEscapeSequence(r *bufio.Reader) {
	b, err := r.ReadByte()
	if err != nil || (b != '[' && b != 'O') {
		return
	}
	for r.Buffered() > 0 {
		b, err := r.ReadByte()
		if err != nil || (b >= 0x40 && b <= 0x7e) {
			return
		}
	}
}

func readKeys(ctx context.Context, cancel context.CancelFunc, r *bufio.Reader, d *engine.Driver) {
	for {
		action, key, err := readInput(r)
		if err != nil {
			cancel()
			return
		}
		var sendErr error
		switch action {
		case actionQuit:
			cancel()
			return
		case actionFinish:
			sendErr = d.Finish(ctx)
		case actionKey:
			sendErr = d.Key(ctx, key)
		}
		if sendErr != nil {
			return
		}
	}
}

func formatResult(res model.Result) string {
	return fmt.Sprintf("wpm %d  raw %d  accuracy %d%%  time %ds  chars %d/%d\r\n",
		res.WPM, res.RawWPM, res.Accuracy, res.DurationSeconds, res.CorrectChars, res.IncorrectChars)
}
