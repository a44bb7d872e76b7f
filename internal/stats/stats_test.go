package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"
)

func result(wpm, raw, acc, seconds int) model.Result {
	return model.Result{
		Mode:     model.ModeTimed,
		Duration: seconds,
		Metrics: model.Metrics{
			WPM: wpm, RawWPM: raw, Accuracy: acc, DurationSeconds: seconds, CorrectChars: wpm,
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Result{result(40, 50, 90, 30), result(60, 62, 96, 60)})
	if s.Tests != 2 || s.AvgWPM != 50 || s.BestWPM != 60 || s.AvgRawWPM != 56 || s.AvgAccuracy != 93 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.TimeTyping != 90*time.Second || s.CorrectChars != 100 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if empty := Summarize(nil); empty.Tests != 0 || empty.AvgWPM != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	same := MovingAverage([]float64{1, 5}, 1)
	if same[0] != 1 || same[1] != 5 {
		t.Fatalf("window 1 must copy values, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Summary{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No tests found.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderBests(t *testing.T) {
	var buf bytes.Buffer
	bests := []model.PersonalBest{
		{Duration: 10, WPM: 88, Accuracy: 97, At: time.Date(2024, 2, 3, 12, 0, 0, 0, time.Local)},
		{Duration: 30},
	}
	if err := RenderBests(&buf, bests); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "10s   88 97% 2024-02-03") {
		t.Fatalf("missing 10s row:\n%s", out)
	}
	if !strings.Contains(out, "30s     -   - -") {
		t.Fatalf("missing empty 30s row:\n%s", out)
	}
}

func TestHistoryRowsNewestFirst(t *testing.T) {
	old := result(40, 41, 90, 30)
	old.EndedAt = time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	text := model.Result{Mode: model.ModeFixedText, TextID: 4, EndedAt: old.EndedAt.Add(time.Hour)}
	rows := HistoryRows([]model.Result{old, text})
	if rows[0][1] != "text #4" || rows[1][1] != "time 30s" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[1][0] != "2024-01-01 08:00" || rows[1][4] != "90%" {
		t.Fatalf("unexpected row %v", rows[1])
	}
}

func TestModeLabel(t *testing.T) {
	cases := map[string]model.Result{
		"time 60s": {Mode: model.ModeTimed, Duration: 60},
		"count-up": {Mode: model.ModeCountUp},
		"text":     {Mode: model.ModeFixedText},
	}
	for want, r := range cases {
		if got := ModeLabel(r); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
