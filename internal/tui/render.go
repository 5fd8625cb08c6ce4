// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/retype/internal/score"
)

var (
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mismatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Strikethrough(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle   = pendingStyle.Underline(true)
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pausedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// Wrong or extra spaces render as a visible glyph so they are not mistaken
// for untouched content.
const placeholderGlyph = "•"

// renderLine renders one scored line. A cursorCol >= 0 underlines the cell at
// that column, or a trailing blank when the column is past the line end; pass
// -1 for lines without the cursor.
func renderLine(target, typed string, cursorCol, tabWidth int) string {
	_, cells := score.ScoreLine(target, typed)
	var b strings.Builder
	col := 0
	for i, c := range cells {
		style := styleFor(c.Kind)
		if i == cursorCol {
			style = style.Underline(true)
		}
		text, width := displayCell(c, col, tabWidth)
		col += width
		b.WriteString(style.Render(text))
	}
	if cursorCol >= len(cells) {
		b.WriteString(cursorStyle.Render(" "))
	}
	return b.String()
}

// displayCell resolves a cell to its on-screen text and width. Tabs expand to
// the next tab stop relative to the current display column.
func displayCell(c score.Cell, col, tabWidth int) (string, int) {
	if c.Placeholder {
		return placeholderGlyph, 1
	}
	if c.Rune == '\t' {
		if tabWidth < 1 {
			tabWidth = 1
		}
		n := tabWidth - col%tabWidth
		return strings.Repeat(" ", n), n
	}
	return string(c.Rune), runewidth.RuneWidth(c.Rune)
}

func styleFor(k score.CellKind) lipgloss.Style {
	switch k {
	case score.Match:
		return matchStyle
	case score.Mismatch:
		return mismatchStyle
	case score.Extra:
		return extraStyle
	default:
		return pendingStyle
	}
}
