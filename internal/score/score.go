// Package score computes per-line correctness and aggregate speed metrics.
package score

import (
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

// CellKind classifies one display position of a scored line.
type CellKind int

const (
	// Match means the typed rune equals the target rune.
	Match CellKind = iota
	// Mismatch means the typed rune differs from the target rune.
	Mismatch
	// Extra means a rune was typed beyond the end of the target line.
	Extra
	// Pending means the target rune has not been typed yet.
	Pending
)

// Cell is one display position of a scored line. For Match and Pending the
// rune is the target's; for Mismatch and Extra it is what the user typed.
// Placeholder marks a wrong or extra literal space, which renderers show as a
// visible glyph so it is not mistaken for untouched content.
type Cell struct {
	Rune        rune
	Kind        CellKind
	Placeholder bool
}

// ScoreLine compares a typed line against its target line, counting correct
// and typed runes and classifying every display position.
func ScoreLine(target, typed string) (model.LineScore, []Cell) {
	targetRunes := []rune(target)
	typedRunes := []rune(typed)

	size := len(targetRunes)
	if len(typedRunes) > size {
		size = len(typedRunes)
	}
	cells := make([]Cell, 0, size)

	correct := 0
	for i, r := range typedRunes {
		switch {
		case i >= len(targetRunes):
			cells = append(cells, Cell{Rune: r, Kind: Extra, Placeholder: r == ' '})
		case r == targetRunes[i]:
			correct++
			cells = append(cells, Cell{Rune: r, Kind: Match})
		default:
			cells = append(cells, Cell{Rune: r, Kind: Mismatch, Placeholder: r == ' '})
		}
	}
	for i := len(typedRunes); i < len(targetRunes); i++ {
		cells = append(cells, Cell{Rune: targetRunes[i], Kind: Pending})
	}

	return model.LineScore{CorrectChars: correct, TypedChars: len(typedRunes)}, cells
}

// ScoreDocument sums ScoreLine over all rows of the target and typed
// documents, treating missing rows on either side as empty lines.
func ScoreDocument(target, typed []string) (totalCorrect, totalTyped int) {
	rows := len(target)
	if len(typed) > rows {
		rows = len(typed)
	}
	for i := 0; i < rows; i++ {
		var targetLine, typedLine string
		if i < len(target) {
			targetLine = target[i]
		}
		if i < len(typed) {
			typedLine = typed[i]
		}
		ls, _ := ScoreLine(targetLine, typedLine)
		totalCorrect += ls.CorrectChars
		totalTyped += ls.TypedChars
	}
	return totalCorrect, totalTyped
}

// ComputeStats converts character totals and active time into words per
// minute and an accuracy percentage. Elapsed time is clamped to a one second
// minimum, WPM uses the 5-chars-per-word convention over correct characters
// only, and both results truncate. Nothing typed counts as 100% accurate.
func ComputeStats(totalCorrect, totalTyped int, elapsed time.Duration) (wpm, accuracy int) {
	if totalCorrect < 0 {
		totalCorrect = 0
	}
	if totalTyped < 0 {
		totalTyped = 0
	}
	if elapsed < time.Second {
		elapsed = time.Second
	}
	minutes := elapsed.Seconds() / 60.0
	wpm = int(float64(totalCorrect) / 5.0 / minutes)
	if totalTyped == 0 {
		return wpm, 100
	}
	if totalCorrect > totalTyped {
		totalCorrect = totalTyped
	}
	return wpm, totalCorrect * 100 / totalTyped
}
