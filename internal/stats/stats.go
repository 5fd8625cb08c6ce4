// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/score"
)

const sparkChars = " .:-=+*#%@"

const fallbackTermWidth = 80

// SessionMetrics computes WPM and accuracy for a stored session.
func SessionMetrics(rec model.SessionRecord) (wpm, accuracy int) {
	return score.ComputeStats(rec.CorrectChars, rec.TypedChars, time.Duration(rec.DurationMs)*time.Millisecond)
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

// Resample shrinks values to at most width points by bucket averaging, so a
// long history still fits one terminal row.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// RenderSummary prints a summary table for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalWPM, totalAcc float64
	bestWPM := 0
	var totalMs int64
	for _, s := range sessions {
		wpm, acc := SessionMetrics(s)
		totalWPM += float64(wpm)
		totalAcc += float64(acc)
		if wpm > bestWPM {
			bestWPM = wpm
		}
		totalMs += s.DurationMs
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Avg WPM: %.1f", totalWPM/count),
		fmt.Sprintf("Best WPM: %d", bestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", totalAcc/count),
		fmt.Sprintf("Active time: %s", (time.Duration(totalMs) * time.Millisecond).Round(time.Second)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy learning-curve sparklines, smoothed by
// a moving average and resampled to the given total width.
func RenderCurves(w io.Writer, sessions []model.SessionRecord, window, totalWidth int) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpm, acc := SessionMetrics(s)
		wpms[i] = float64(wpm)
		accs[i] = float64(acc)
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)

	const label = len("Accuracy ")
	plotWidth := totalWidth - label
	if plotWidth < 1 {
		plotWidth = fallbackTermWidth - label
	}
	wpms = Resample(wpms, plotWidth)
	accs = Resample(accs, plotWidth)

	if _, err := fmt.Fprintf(w, "WPM      %s\n", Sparkline(wpms)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy %s\n", Sparkline(accs)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "         (%d sessions, min/max scaled per series)\n", len(sessions))
	return err
}

// TerminalWidth returns the stdout width, or a fallback when stdout is not a
// terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallbackTermWidth
	}
	return w
}
