package align

import "github.com/verte-zerg/retype/internal/model"

// Remap re-anchors a typed transcript and cursor onto an edited target.
// Lines in unchanged regions are copied verbatim; lines a hunk touches start
// blank. A cursor on a line a hunk consumes moves to the start of the hunk's
// new region. Returns ErrUnavailable when the diff primitive gives up.
func Remap(oldTarget, newTarget, oldTyped []string, oldCursor model.Position) (*model.RemapResult, error) {
	hunks, err := Diff(oldTarget, newTarget)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(newTarget))
	var cursor model.Position
	cursorFound := false
	preserved := 0

	oldIdx, newIdx := 1, 1
	copySpan := func(count int) {
		for k := 0; k < count; k++ {
			oldI := oldIdx + k
			newI := newIdx + k
			var text string
			if oldI-1 < len(oldTyped) {
				text = oldTyped[oldI-1]
			}
			lines[newI-1] = text
			preserved++
			if !cursorFound && oldCursor.Line == oldI {
				cursor = model.Position{Line: newI, Col: clampCol(oldCursor.Col, text)}
				cursorFound = true
			}
		}
	}

	for _, h := range hunks {
		// Unchanged span between the previous position and this hunk.
		// The gap is equal on both sides for well-formed hunks; clip
		// defensively so a short side never copies out of range.
		span := h.OldStart - oldIdx
		if alt := h.NewStart - newIdx; alt < span {
			span = alt
		}
		if span > 0 {
			copySpan(span)
			oldIdx += span
			newIdx += span
		}

		// A cursor on an old line this hunk consumes resets to the
		// start of the hunk's new region.
		if !cursorFound && h.OldCount > 0 &&
			oldCursor.Line >= h.OldStart && oldCursor.Line < h.OldStart+h.OldCount {
			cursor = model.Position{Line: clampLine(h.NewStart, len(newTarget)), Col: 0}
			cursorFound = true
		}
		oldIdx += h.OldCount
		newIdx += h.NewCount
	}

	// Trailing unchanged span after the last hunk.
	tail := len(oldTarget) - oldIdx + 1
	if alt := len(newTarget) - newIdx + 1; alt < tail {
		tail = alt
	}
	if tail > 0 {
		copySpan(tail)
	}

	if !cursorFound {
		cursor = model.Position{Line: clampLine(oldCursor.Line, len(newTarget)), Col: 0}
	}

	return &model.RemapResult{
		Lines:          lines,
		Cursor:         cursor,
		PreservedCount: preserved,
		TotalLines:     len(newTarget),
	}, nil
}

func clampLine(line, count int) int {
	if line > count {
		line = count
	}
	if line < 1 {
		line = 1
	}
	return line
}

func clampCol(col int, line string) int {
	if col < 0 {
		return 0
	}
	if n := len([]rune(line)); col > n {
		return n
	}
	return col
}
