// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/keybeat/internal/model"
)

const sparkChars = " .:-=+*#%@"

// trendWindow is the moving average window of the smoothed WPM trend.
const trendWindow = 3

// Summary aggregates a set of stored results.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	Mistakes    int
	DurationSec int
}

// Summarize aggregates results.
func Summarize(results []model.SessionResult) Summary {
	var sum Summary
	if len(results) == 0 {
		return sum
	}
	var totalWPM, totalAcc int
	for _, r := range results {
		totalWPM += r.WPM
		totalAcc += r.Accuracy
		sum.Mistakes += r.Mistakes
		sum.DurationSec += r.DurationSec
		if r.WPM > sum.BestWPM {
			sum.BestWPM = r.WPM
		}
	}
	sum.Sessions = len(results)
	sum.AvgWPM = float64(totalWPM) / float64(len(results))
	sum.AvgAccuracy = float64(totalAcc) / float64(len(results))
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, results []model.SessionResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(results)
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", sum.Sessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg WPM: %.1f\n", sum.AvgWPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best WPM: %d\n", sum.BestWPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accuracy: %.1f%%\n", sum.AvgAccuracy); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total mistakes: %d\n", sum.Mistakes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total time: %ds\n", sum.DurationSec); err != nil {
		return err
	}
	// Pages arrive newest first; the trend reads left to right.
	wpms := make([]float64, len(results))
	for i, r := range results {
		wpms[len(results)-1-i] = float64(r.WPM)
	}
	if _, err := fmt.Fprintf(w, "WPM trend: [%s]\n", Sparkline(wpms)); err != nil {
		return err
	}
	if len(wpms) > trendWindow {
		smoothed := MovingAverage(wpms, trendWindow)
		if _, err := fmt.Fprintf(w, "Smoothed (%d): [%s]\n", trendWindow, Sparkline(smoothed)); err != nil {
			return err
		}
	}
	return nil
}

// ResultRows formats results as table cells.
func ResultRows(results []model.SessionResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Poem,
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d", r.Mistakes),
			fmt.Sprintf("%ds", r.DurationSec),
		})
	}
	return rows
}

// ResultHeaders are the column titles of a results table.
var ResultHeaders = []string{"Poem", "WPM", "Accuracy", "Mistakes", "Time"}

// RenderResultsTable prints one page of results as an aligned table.
// maxWidth narrows the poem column when positive.
func RenderResultsTable(w io.Writer, page model.ResultsPage, maxWidth int) error {
	if _, err := fmt.Fprintf(w, "Results (page %d of %d)\n", page.Page, page.TotalPages); err != nil {
		return err
	}
	if len(page.Items) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	cols := make([]column, len(ResultHeaders))
	for i, title := range ResultHeaders {
		cols[i] = column{title: title, right: i > 0}
	}
	for _, line := range layoutTable(cols, ResultRows(page.Items), maxWidth, 0) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
