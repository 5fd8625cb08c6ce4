package align

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/retype/internal/model"
)

func TestRemapUnchangedRoundTrip(t *testing.T) {
	target := []string{"alpha", "beta", "gamma"}
	typed := []string{"alpha", "beXa", ""}
	cursor := model.Position{Line: 2, Col: 4}

	res, err := Remap(target, target, typed, cursor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.Lines, typed) {
		t.Fatalf("got lines %v, want %v", res.Lines, typed)
	}
	if res.Cursor != cursor {
		t.Fatalf("got cursor %v, want %v", res.Cursor, cursor)
	}
	if res.PreservedCount != 3 || res.TotalLines != 3 {
		t.Fatalf("got preserved=%d total=%d, want 3/3", res.PreservedCount, res.TotalLines)
	}
}

func TestRemapReplacedLineReset(t *testing.T) {
	res, err := Remap(
		[]string{"A", "B", "C"},
		[]string{"A", "X", "C"},
		[]string{"A", "B", "c"},
		model.Position{Line: 3, Col: 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"A", "", "c"}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Fatalf("got lines %v, want %v", res.Lines, want)
	}
	if res.Cursor != (model.Position{Line: 3, Col: 1}) {
		t.Fatalf("got cursor %v, want line 3 col 1", res.Cursor)
	}
	if res.PreservedCount != 2 {
		t.Fatalf("got preserved=%d, want 2", res.PreservedCount)
	}
}

func TestRemapInsertionShiftsCursor(t *testing.T) {
	res, err := Remap(
		[]string{"A", "B"},
		[]string{"A", "Z", "B"},
		[]string{"A", "B"},
		model.Position{Line: 2, Col: 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"A", "", "B"}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Fatalf("got lines %v, want %v", res.Lines, want)
	}
	if res.Cursor != (model.Position{Line: 3, Col: 1}) {
		t.Fatalf("got cursor %v, want line 3 col 1", res.Cursor)
	}
}

func TestRemapCursorInsideHunk(t *testing.T) {
	res, err := Remap(
		[]string{"keep", "old1", "old2", "tail"},
		[]string{"keep", "new1", "tail"},
		[]string{"keep", "typed1", "typed2", ""},
		model.Position{Line: 3, Col: 4},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"keep", "", ""}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Fatalf("got lines %v, want %v", res.Lines, want)
	}
	// Cursor was on a consumed old line: reset to the hunk's new start.
	if res.Cursor != (model.Position{Line: 2, Col: 0}) {
		t.Fatalf("got cursor %v, want line 2 col 0", res.Cursor)
	}
}

func TestRemapCursorOnHunkStartBelongsToHunk(t *testing.T) {
	// The first consumed line sits on the boundary with the preceding
	// unchanged span; it must resolve to the hunk.
	res, err := Remap(
		[]string{"same", "gone", "same2"},
		[]string{"same", "fresh", "same2"},
		[]string{"same", "gone", "same2"},
		model.Position{Line: 2, Col: 3},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cursor != (model.Position{Line: 2, Col: 0}) {
		t.Fatalf("got cursor %v, want line 2 col 0", res.Cursor)
	}
}

func TestRemapCursorPastEndFallback(t *testing.T) {
	res, err := Remap(
		[]string{"a", "b", "c", "d"},
		[]string{"a", "b"},
		[]string{"a", "b", "c", "d"},
		model.Position{Line: 9, Col: 5},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cursor != (model.Position{Line: 2, Col: 0}) {
		t.Fatalf("got cursor %v, want clamp to line 2 col 0", res.Cursor)
	}
}

func TestRemapColumnClampedToTypedLine(t *testing.T) {
	res, err := Remap(
		[]string{"abcdef", "x"},
		[]string{"abcdef", "x", "y"},
		[]string{"abc", "x"},
		model.Position{Line: 1, Col: 6},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cursor != (model.Position{Line: 1, Col: 3}) {
		t.Fatalf("got cursor %v, want col clamped to 3", res.Cursor)
	}
}

func TestRemapShorterTranscript(t *testing.T) {
	// A transcript shorter than the old target contributes empty lines.
	res, err := Remap(
		[]string{"a", "b", "c"},
		[]string{"a", "b", "c"},
		[]string{"a"},
		model.Position{Line: 1, Col: 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "", ""}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Fatalf("got lines %v, want %v", res.Lines, want)
	}
}

func TestRemapEmptyNewTarget(t *testing.T) {
	res, err := Remap(
		[]string{"a", "b"},
		nil,
		[]string{"a", "b"},
		model.Position{Line: 2, Col: 0},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Lines) != 0 || res.TotalLines != 0 || res.PreservedCount != 0 {
		t.Fatalf("empty new target should yield an empty transcript, got %+v", res)
	}
}

func TestRemapPreservedNeverExceedsTotal(t *testing.T) {
	res, err := Remap(
		[]string{"a", "b", "c", "d", "e"},
		[]string{"a", "c", "e"},
		[]string{"a", "b", "c", "d", "e"},
		model.Position{Line: 1, Col: 0},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PreservedCount > res.TotalLines {
		t.Fatalf("preserved=%d exceeds total=%d", res.PreservedCount, res.TotalLines)
	}
}
