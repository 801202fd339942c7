package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/keybeat/internal/model"
)

// Series is a named sequence of values drawn as one curve.
type Series struct {
	Name   string
	Values []float64
}

// PlotOptions controls the size and colouring of a plot.
// Width counts plot cells, excluding the axis gutter.
type PlotOptions struct {
	Width  int
	Height int
	Color  bool
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisGutter        = " ┤ "
	axisHigh          = "hi"
	axisMid           = "mid"
	axisLow           = "lo"
	colorReset        = "\x1b[0m"
)

// dash describes the on/off dot pattern along a curve.
type dash struct {
	name   string
	period int
	on     int
}

func (d dash) draws(x int) bool {
	if d.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%d.period < d.on
}

var dashes = []dash{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

var curveColors = []string{"\x1b[36m", "\x1b[33m", "\x1b[35m", "\x1b[32m"}

// brailleGrid is a rows x cols block of braille cells, each holding 2x4 dots.
type brailleGrid struct {
	cols  int
	rows  int
	cells []uint8
}

func newBrailleGrid(cols, rows int) *brailleGrid {
	return &brailleGrid{cols: cols, rows: rows, cells: make([]uint8, cols*rows)}
}

// dotBits maps a dot position inside a cell to its braille bit, indexed [y][x].
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func (g *brailleGrid) dot(px, py int) {
	cx, cy := px/2, py/4
	if px < 0 || py < 0 || cx >= g.cols || cy >= g.rows {
		return
	}
	g.cells[cy*g.cols+cx] |= dotBits[py%4][px%2]
}

func (g *brailleGrid) at(cx, cy int) uint8 {
	return g.cells[cy*g.cols+cx]
}

// line draws a Bresenham segment, keeping only the dots the pattern allows.
func (g *brailleGrid) line(x0, y0, x1, y1 int, pattern dash) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if pattern.draws(x0) {
			g.dot(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// PlotSeries renders series as a braille chart. Each series is scaled to its
// own range, printed above the chart.
func PlotSeries(w io.Writer, title string, series []Series, opts PlotOptions) error {
	curves := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			curves = append(curves, s)
		}
	}
	if len(curves) == 0 {
		return nil
	}
	width := opts.Width
	if width < minPlotWidth {
		width = minPlotWidth
	}
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}

	grids := make([]*brailleGrid, len(curves))
	ranges := make([][2]float64, len(curves))
	for i, s := range curves {
		values := fitToWidth(s.Values, width)
		lo, hi := valueRange(values)
		ranges[i] = [2]float64{lo, hi}
		grid := newBrailleGrid(width, height)
		pattern := dashes[i%len(dashes)]
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, dotRow(v, lo, hi, height*4)
			if prevX < 0 {
				if pattern.draws(px) {
					grid.dot(px, py)
				}
			} else {
				grid.line(prevX, prevY, px, py, pattern)
			}
			prevX, prevY = px, py
		}
		grids[i] = grid
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for i, s := range curves {
		fmt.Fprintf(&b, "%s: %.1f..%.1f\n", s.Name, ranges[i][0], ranges[i][1])
	}
	labels := axisLabels(height)
	gutter := runewidth.StringWidth(axisMid)
	for y := 0; y < height; y++ {
		b.WriteString(runewidth.FillLeft(labels[y], gutter))
		b.WriteString(axisGutter)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, g := range grids {
				if bits := g.at(x, y); bits != 0 {
					mask |= bits
					if owner < 0 {
						owner = i
					}
				}
			}
			cell := string(rune(0x2800 + int(mask)))
			if opts.Color && owner >= 0 {
				cell = curveColors[owner%len(curveColors)] + cell + colorReset
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	b.WriteString(legend(curves, opts.Color) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotHistory charts WPM and accuracy for results, oldest on the left.
// totalWidth is the space available including the axis gutter.
func PlotHistory(w io.Writer, results []model.SessionResult, totalWidth int, color bool) error {
	if len(results) < 2 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = fallbackWidth
	}
	wpm := make([]float64, len(results))
	acc := make([]float64, len(results))
	for i, r := range results {
		j := len(results) - 1 - i
		wpm[j] = float64(r.WPM)
		acc[j] = float64(r.Accuracy)
	}
	return PlotSeries(w, "History", []Series{
		{Name: "WPM", Values: wpm},
		{Name: "Accuracy", Values: acc},
	}, PlotOptions{Width: PlotWidthFor(totalWidth), Color: color})
}

// PlotWidthFor returns the number of plot cells that fit in totalWidth.
func PlotWidthFor(totalWidth int) int {
	width := totalWidth - runewidth.StringWidth(axisMid) - runewidth.StringWidth(axisGutter)
	if width < minPlotWidth {
		return minPlotWidth
	}
	return width
}

// ColorEnabled reports whether w is a terminal that accepts ANSI colours.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func axisLabels(height int) []string {
	labels := make([]string, height)
	labels[0] = axisHigh
	if height > 2 {
		labels[height/2] = axisMid
	}
	if height > 1 {
		labels[height-1] = axisLow
	}
	return labels
}

func legend(curves []Series, color bool) string {
	parts := make([]string, len(curves))
	for i, s := range curves {
		part := fmt.Sprintf("%s (%s)", s.Name, dashes[i%len(dashes)].name)
		if color {
			part = curveColors[i%len(curveColors)] + part + colorReset
		}
		parts[i] = part
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// fitToWidth averages buckets when values outnumber cells and interpolates
// linearly when they do not.
func fitToWidth(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		step := float64(n-1) / float64(width-1)
		for i := range out {
			pos := float64(i) * step
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx] + (values[idx+1]-values[idx])*frac
		}
	}
	return out
}

// valueRange widens a flat range so a constant series sits mid-chart.
func valueRange(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return lo, hi
}

// dotRow maps v onto dots rows, with row 0 at the top.
func dotRow(v, lo, hi float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	row := int(math.Round((hi - v) / (hi - lo) * float64(dots-1)))
	return min(max(row, 0), dots-1)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
