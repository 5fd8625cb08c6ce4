// Package nav classifies separator lines and computes cursor movement.
package nav

import (
	"unicode"

	"github.com/verte-zerg/retype/internal/model"
)

// minSeparatorLen is the shortest stripped length that counts as decoration.
const minSeparatorLen = 5

// IsSeparatorLine reports whether a line is pure decoration such as "-----"
// or "=====". Whitespace is ignored; lines shorter than five non-space runes
// or starting with an alphanumeric rune are never separators, and the rest
// must be a single rune repeated.
func IsSeparatorLine(line string) bool {
	stripped := make([]rune, 0, len(line))
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		stripped = append(stripped, r)
	}
	if len(stripped) < minSeparatorLen {
		return false
	}
	first := stripped[0]
	if unicode.IsLetter(first) || unicode.IsDigit(first) {
		return false
	}
	for _, r := range stripped[1:] {
		if r != first {
			return false
		}
	}
	return true
}

// NextPosition finds the next line to type from currentLine in the given
// direction (+1 or -1). With autoSkip, separator lines along the way are
// consumed and their numbers returned so the caller can fill them with the
// target text, scoring them as complete. The landing column is the width of
// the line's leading whitespace. Running off either end saturates: the last
// line moving forward, line 1 column 0 moving backward.
func NextPosition(target []string, currentLine, direction int, autoSkip bool) (model.Position, []int) {
	if len(target) == 0 {
		return model.Position{Line: 1, Col: 0}, nil
	}
	if direction >= 0 {
		direction = 1
	} else {
		direction = -1
	}

	var skipped []int
	line := currentLine + direction
	for line >= 1 && line <= len(target) {
		if autoSkip && IsSeparatorLine(target[line-1]) {
			skipped = append(skipped, line)
			line += direction
			continue
		}
		return model.Position{Line: line, Col: IndentWidth(target[line-1])}, skipped
	}
	if direction > 0 {
		last := len(target)
		return model.Position{Line: last, Col: IndentWidth(target[last-1])}, skipped
	}
	return model.Position{Line: 1, Col: 0}, skipped
}

// IndentWidth returns the number of leading whitespace runes of a line.
func IndentWidth(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}
