// Package align diffs target document versions and re-anchors typed progress
// onto the edited version.
package align

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/verte-zerg/retype/internal/model"
)

// ErrUnavailable is returned when the line diff cannot be computed; callers
// fall back to a fresh session instead of guessing.
var ErrUnavailable = errors.New("align: line diff unavailable")

// Diff computes the ordered hunks transforming the old line sequence into the
// new one. Hunks are non-overlapping, gap-consistent, and deterministic for
// identical inputs.
func Diff(oldLines, newLines []string) ([]model.Hunk, error) {
	dmp := diffmatchpatch.New()
	// Diffs must be reproducible; the default deadline can truncate the
	// search on slow machines.
	dmp.DiffTimeout = 0

	oldRunes, newRunes, lineArray := dmp.DiffLinesToRunes(joinLines(oldLines), joinLines(newLines))
	if len(lineArray) >= utf8.MaxRune {
		return nil, ErrUnavailable
	}
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)
	return hunksFromDiffs(diffs)
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// hunksFromDiffs converts equal/delete/insert runs over whole lines into
// hunks, coalescing adjacent delete and insert runs into a single replace.
func hunksFromDiffs(diffs []diffmatchpatch.Diff) ([]model.Hunk, error) {
	var hunks []model.Hunk
	oldLine, newLine := 1, 1
	var cur model.Hunk
	open := false
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if n == 0 {
			if d.Text != "" {
				// Line mode only ever yields whole lines.
				return nil, ErrUnavailable
			}
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if open {
				hunks = append(hunks, cur)
				open = false
			}
			oldLine += n
			newLine += n
		case diffmatchpatch.DiffDelete:
			if !open {
				cur = model.Hunk{OldStart: oldLine, NewStart: newLine}
				open = true
			}
			cur.OldCount += n
			oldLine += n
		case diffmatchpatch.DiffInsert:
			if !open {
				cur = model.Hunk{OldStart: oldLine, NewStart: newLine}
				open = true
			}
			cur.NewCount += n
			newLine += n
		}
	}
	if open {
		hunks = append(hunks, cur)
	}
	return hunks, nil
}
