package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named line on a chart.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	axisLabelWidth     = 5
	axisSeparator      = " │ "
	fallbackTermWidth  = 80
	colorReset         = "\x1b[0m"
)

// Series colors, in order.
var palette = []string{
	"\x1b[36m", // cyan
	"\x1b[33m", // yellow
	"\x1b[35m", // magenta
	"\x1b[32m", // green
}

// dashed patterns per series index: draw when x%period < on.
var dashes = [][2]int{{1, 1}, {4, 2}, {4, 1}}

// Chart draws series on a shared vertical scale using braille cells, so a
// cell holds a 2x4 grid of dots.
type Chart struct {
	Title  string
	Series []Series
	Width  int
	Height int
	Color  bool
}

// PlotWidthFor returns the drawable width left after the axis in totalWidth
// columns.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	w := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if w < minChartWidth {
		return minChartWidth
	}
	return w
}

// Render writes the chart. Empty series are skipped; nothing is written when
// no series has values.
func (c Chart) Render(w io.Writer) error {
	series := make([]Series, 0, len(c.Series))
	for _, s := range c.Series {
		if len(s.Values) > 0 {
			series = append(series, s)
		}
	}
	if len(series) == 0 {
		return nil
	}
	width, height := c.Width, c.Height
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minChartWidth {
		width = minChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}

	lo, hi := bounds(series)
	cv := newCanvas(width, height)
	for i, s := range series {
		points := resample(s.Values, width)
		dash := dashes[i%len(dashes)]
		px, py := -1, -1
		for x, v := range points {
			dx, dy := x*2, cv.dotRow(v, lo, hi)
			if px < 0 {
				cv.plot(dx, dy, i, dash)
			} else {
				cv.line(px, py, dx, dy, i, dash)
			}
			px, py = dx, dy
		}
	}

	var b strings.Builder
	if c.Title != "" {
		b.WriteString(c.Title)
		b.WriteByte('\n')
	}
	for y, row := range cv.rows(c.Color) {
		b.WriteString(axisLabel(y, height, lo, hi))
		b.WriteString(axisSeparator)
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteString(legend(series, c.Color))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func bounds(series []Series) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return lo, hi
}

func axisLabel(row, height int, lo, hi float64) string {
	var v float64
	switch {
	case row == 0:
		v = hi
	case row == height-1:
		v = lo
	case height > 2 && row == height/2:
		v = (lo + hi) / 2
	default:
		return strings.Repeat(" ", axisLabelWidth)
	}
	return fmt.Sprintf("%*.0f", axisLabelWidth, v)
}

func legend(series []Series, color bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s", brailleRune(0x01), s.Name)
		if color {
			label = palette[i%len(palette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

type canvas struct {
	width  int
	height int
	mask   [][]uint8
	owner  [][]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height}
	c.mask = make([][]uint8, height)
	c.owner = make([][]int, height)
	for y := range c.mask {
		c.mask[y] = make([]uint8, width)
		c.owner[y] = make([]int, width)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

// dotRow maps v onto the dot grid, top row for hi.
func (c *canvas) dotRow(v, lo, hi float64) int {
	dots := c.height * 4
	row := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(dots-1)))
	return min(max(row, 0), dots-1)
}

func (c *canvas) plot(x, y, series int, dash [2]int) {
	if x%dash[0] >= dash[1] {
		return
	}
	cx, cy := x/2, y/4
	if cx < 0 || cx >= c.width || cy < 0 || cy >= c.height {
		return
	}
	c.mask[cy][cx] |= dotBit(x%2, y%4)
	if c.owner[cy][cx] < 0 {
		c.owner[cy][cx] = series
	}
}

// line draws with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1, series int, dash [2]int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.plot(x0, y0, series, dash)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			e += dx
			y0 += sy
		}
	}
}

func (c *canvas) rows(color bool) []string {
	out := make([]string, c.height)
	for y := range c.mask {
		var b strings.Builder
		for x, m := range c.mask[y] {
			r := brailleRune(m)
			if color && c.owner[y][x] >= 0 {
				b.WriteString(palette[c.owner[y][x]%len(palette)])
				b.WriteRune(r)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(r)
		}
		out[y] = b.String()
	}
	return out
}

// dotBit returns the braille bit for column x (0-1) and row y (0-3).
func dotBit(x, y int) uint8 {
	if y == 3 {
		return 0x40 << x
	}
	return 1 << (y + 3*x)
}

func brailleRune(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// resample stretches or averages values to exactly n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == n:
		copy(out, values)
	case len(values) > n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(n-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

// ColorEnabled reports whether w is a terminal and NO_COLOR is unset.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
