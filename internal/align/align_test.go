package align

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/verte-zerg/retype/internal/model"
)

func TestDiffIdentical(t *testing.T) {
	lines := []string{"a", "b", "c"}
	hunks, err := Diff(lines, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hunks) != 0 {
		t.Fatalf("identical documents should produce no hunks, got %v", hunks)
	}
}

func TestDiffReplace(t *testing.T) {
	hunks, err := Diff([]string{"A", "B", "C"}, []string{"A", "X", "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Hunk{{OldStart: 2, OldCount: 1, NewStart: 2, NewCount: 1}}
	if !reflect.DeepEqual(hunks, want) {
		t.Fatalf("got %v, want %v", hunks, want)
	}
}

func TestDiffInsert(t *testing.T) {
	hunks, err := Diff([]string{"A", "B"}, []string{"A", "Z", "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Hunk{{OldStart: 2, OldCount: 0, NewStart: 2, NewCount: 1}}
	if !reflect.DeepEqual(hunks, want) {
		t.Fatalf("got %v, want %v", hunks, want)
	}
}

func TestDiffDelete(t *testing.T) {
	hunks, err := Diff([]string{"A", "B", "C"}, []string{"A", "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Hunk{{OldStart: 2, OldCount: 1, NewStart: 2, NewCount: 0}}
	if !reflect.DeepEqual(hunks, want) {
		t.Fatalf("got %v, want %v", hunks, want)
	}
}

func TestDiffEmptySides(t *testing.T) {
	hunks, err := Diff(nil, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Hunk{{OldStart: 1, OldCount: 0, NewStart: 1, NewCount: 2}}
	if !reflect.DeepEqual(hunks, want) {
		t.Fatalf("insert into empty: got %v, want %v", hunks, want)
	}

	hunks, err = Diff([]string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = []model.Hunk{{OldStart: 1, OldCount: 2, NewStart: 1, NewCount: 0}}
	if !reflect.DeepEqual(hunks, want) {
		t.Fatalf("delete all: got %v, want %v", hunks, want)
	}
}

func TestDiffHunksOrderedAndGapConsistent(t *testing.T) {
	oldLines := make([]string, 0, 40)
	newLines := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		oldLines = append(oldLines, fmt.Sprintf("line %d", i))
	}
	newLines = append(newLines, oldLines...)
	newLines[5] = "edited 5"
	newLines[20] = "edited 20"
	newLines = append(newLines[:30], append([]string{"inserted"}, newLines[30:]...)...)

	hunks, err := Diff(oldLines, newLines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hunks) == 0 {
		t.Fatalf("expected hunks for an edited document")
	}
	oldPos, newPos := 1, 1
	for i, h := range hunks {
		if h.OldStart < oldPos || h.NewStart < newPos {
			t.Fatalf("hunk %d overlaps or is out of order: %v", i, h)
		}
		if h.OldStart-oldPos != h.NewStart-newPos {
			t.Fatalf("hunk %d breaks gap consistency: %v (oldPos=%d newPos=%d)", i, h, oldPos, newPos)
		}
		oldPos = h.OldStart + h.OldCount
		newPos = h.NewStart + h.NewCount
	}
	if len(oldLines)-oldPos != len(newLines)-newPos {
		t.Fatalf("trailing gap mismatch: old %d vs new %d", len(oldLines)-oldPos, len(newLines)-newPos)
	}
}

func TestDiffDeterministic(t *testing.T) {
	oldLines := []string{"a", "b", "c", "d", "e", "b", "c"}
	newLines := []string{"a", "c", "b", "e", "d", "c"}
	first, err := Diff(oldLines, newLines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Diff(oldLines, newLines)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
}
