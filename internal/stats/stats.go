// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of results.
type Summary struct {
	Tests        int
	AvgWPM       float64
	BestWPM      int
	AvgRawWPM    float64
	AvgAccuracy  float64
	TimeTyping   time.Duration
	CorrectChars int
}

// Summarize computes averages over results.
func Summarize(results []model.Result) Summary {
	s := Summary{Tests: len(results)}
	if len(results) == 0 {
		return s
	}
	var wpm, raw, acc float64
	for _, r := range results {
		wpm += float64(r.WPM)
		raw += float64(r.RawWPM)
		acc += float64(r.Accuracy)
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
		s.TimeTyping += time.Duration(r.DurationSeconds) * time.Second
		s.CorrectChars += r.CorrectChars
	}
	n := float64(len(results))
	s.AvgWPM = wpm / n
	s.AvgRawWPM = raw / n
	s.AvgAccuracy = acc / n
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[min(max(idx, 0), len(sparkChars)-1)])
	}
	return b.String()
}

// WPMSeries extracts WPM values in result order.
func WPMSeries(results []model.Result) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = float64(r.WPM)
	}
	return out
}

// AccuracySeries extracts accuracy values in result order.
func AccuracySeries(results []model.Result) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = float64(r.Accuracy)
	}
	return out
}

// RenderSummary prints summary lines.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Tests == 0 {
		_, err := fmt.Fprintln(w, "No tests found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", s.Tests),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg raw WPM: %.1f", s.AvgRawWPM),
		fmt.Sprintf("Avg accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Time typing: %s", s.TimeTyping),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderBests prints personal bests per standard duration.
func RenderBests(w io.Writer, bests []model.PersonalBest) error {
	if _, err := fmt.Fprintln(w, "Personal bests"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(bests))
	for _, b := range bests {
		if b.WPM == 0 {
			rows = append(rows, []string{fmt.Sprintf("%ds", b.Duration), "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("%ds", b.Duration),
			fmt.Sprintf("%d", b.WPM),
			fmt.Sprintf("%d%%", b.Accuracy),
			b.At.Local().Format("2006-01-02"),
		})
	}
	return writeLines(w, formatTable([]string{"Time", "WPM", "Acc", "Date"}, rows, map[int]bool{1: true, 2: true}))
}

// HistoryRows formats results newest first for tables.
func HistoryRows(results []model.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			ModeLabel(r),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d", r.RawWPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d/%d", r.CorrectChars, r.IncorrectChars),
		})
	}
	return rows
}

// HistoryHeaders are the column titles for HistoryRows.
var HistoryHeaders = []string{"Date", "Mode", "WPM", "Raw", "Acc", "Chars"}

// RenderHistory prints a history table, newest first.
func RenderHistory(w io.Writer, results []model.Result) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	return writeLines(w, formatTable(HistoryHeaders, HistoryRows(results), map[int]bool{2: true, 3: true, 4: true, 5: true}))
}

// ModeLabel describes the test mode of a result.
func ModeLabel(r model.Result) string {
	switch r.Mode {
	case model.ModeTimed:
		return fmt.Sprintf("time %ds", r.Duration)
	case model.ModeFixedText:
		if r.TextID > 0 {
			return fmt.Sprintf("text #%d", r.TextID)
		}
		return "text"
	default:
		return string(r.Mode)
	}
}

// RenderCurves prints WPM and accuracy charts smoothed over window results.
func RenderCurves(w io.Writer, results []model.Result, window, totalWidth, height int, color bool) error {
	if len(results) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = float64(r.RawWPM)
	}
	charts := []Chart{
		{
			Title: "Speed",
			Series: []Series{
				{Name: "WPM", Values: MovingAverage(WPMSeries(results), window)},
				{Name: "Raw", Values: MovingAverage(raw, window)},
			},
		},
		{
			Title:  "Accuracy",
			Series: []Series{{Name: "Accuracy %", Values: MovingAverage(AccuracySeries(results), window)}},
		},
	}
	for _, c := range charts {
		c.Width, c.Height, c.Color = width, height, color
		if err := c.Render(w); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
