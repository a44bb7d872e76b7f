package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestChartRender(t *testing.T) {
	var buf bytes.Buffer
	c := Chart{
		Title: "Speed",
		Series: []Series{
			{Name: "WPM", Values: []float64{40, 50, 60, 50, 40}},
			{Name: "Raw", Values: []float64{45, 45, 70, 80, 90}},
			{Name: "Empty"},
		},
		Width:  12,
		Height: 4,
	}
	if err := c.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 rows and legend, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Speed" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "   90"+axisSeparator) || !strings.HasPrefix(lines[4], "   40"+axisSeparator) {
		t.Fatalf("expected axis to span 40..90:\n%s", buf.String())
	}
	if !strings.Contains(lines[5], "WPM") || !strings.Contains(lines[5], "Raw") || strings.Contains(lines[5], "Empty") {
		t.Fatalf("unexpected legend %q", lines[5])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no color codes")
	}
}

func TestChartRenderNothingWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	if err := (Chart{Title: "x", Series: []Series{{Name: "a"}}}).Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-axisLabelWidth-runewidth.StringWidth(axisSeparator) {
		t.Fatalf("unexpected width %d", got)
	}
	if got := PlotWidthFor(0); got != minChartWidth {
		t.Fatalf("expected min width %d, got %d", minChartWidth, got)
	}
}

func TestDotBit(t *testing.T) {
	want := map[[2]int]uint8{
		{0, 0}: 0x01, {0, 1}: 0x02, {0, 2}: 0x04, {0, 3}: 0x40,
		{1, 0}: 0x08, {1, 1}: 0x10, {1, 2}: 0x20, {1, 3}: 0x80,
	}
	for pos, bit := range want {
		if got := dotBit(pos[0], pos[1]); got != bit {
			t.Fatalf("dot %v: expected %#x, got %#x", pos, bit, got)
		}
	}
}

func TestResample(t *testing.T) {
	down := resample([]float64{1, 3, 5, 7}, 2)
	if down[0] != 2 || down[1] != 6 {
		t.Fatalf("unexpected downsample %v", down)
	}
	up := resample([]float64{0, 10}, 3)
	if up[0] != 0 || up[1] != 5 || up[2] != 10 {
		t.Fatalf("unexpected upsample %v", up)
	}
}
