package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/nav"
	"github.com/verte-zerg/retype/internal/score"
	"github.com/verte-zerg/retype/internal/session"
	"github.com/verte-zerg/retype/internal/store"
)

const tickPeriod = 250 * time.Millisecond

type tickMsg time.Time

// Session is the restored state the practice UI starts from.
type Session struct {
	Path           string
	Target         []string
	Typed          []string
	Cursor         model.Position
	AccumulatedMs  int64
	Resumed        bool
	Remapped       bool
	PreservedLines int
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	config model.Config
	store  *store.Store
	path   string

	target []string
	typed  []string
	cursor model.Position

	clock     session.Clock
	startedAt time.Time

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	resumed        bool
	remapped       bool
	preservedLines int

	finished  bool
	finalWPM  int
	finalAcc  int
	statusMsg string
	saveErr   string
}

// NewModel constructs a practice model from a restored (or fresh) session.
func NewModel(cfg model.Config, st *store.Store, sess Session) *Model {
	m := &Model{
		config:         cfg,
		store:          st,
		path:           sess.Path,
		target:         sess.Target,
		typed:          normalizeTyped(sess.Typed, len(sess.Target)),
		clock:          session.Resume(sess.AccumulatedMs),
		startedAt:      time.Now(),
		resumed:        sess.Resumed,
		remapped:       sess.Remapped,
		preservedLines: sess.PreservedLines,
	}
	if sess.Resumed {
		m.cursor = clampCursor(sess.Cursor, m.typed)
		m.landOn(m.cursor)
	} else {
		pos, skipped := nav.NextPosition(m.target, 0, 1, cfg.AutoSkip)
		m.fillSeparators(skipped)
		m.landOn(pos)
	}
	return m
}

// normalizeTyped pads or trims the transcript to the target's line count.
func normalizeTyped(typed []string, lines int) []string {
	out := make([]string, lines)
	copy(out, typed)
	return out
}

func clampCursor(pos model.Position, typed []string) model.Position {
	if pos.Line < 1 {
		pos.Line = 1
	}
	if pos.Line > len(typed) {
		pos.Line = len(typed)
	}
	if pos.Line < 1 {
		return model.Position{Line: 1, Col: 0}
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if n := len([]rune(typed[pos.Line-1])); pos.Col > n {
		pos.Col = n
	}
	return pos
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickPeriod, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := msg.Height - 2
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		m.refreshContent()
		return m, nil
	case tickMsg:
		m.clock = m.clock.Tick(time.Time(msg), m.idleThreshold())
		return m, tickCmd()
	case tea.KeyMsg:
		if m.finished {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.saveProgress()
		return m, tea.Quit
	case tea.KeyCtrlS:
		m.saveProgress()
		if m.saveErr == "" {
			m.statusMsg = "saved"
		}
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.handleBackspace()
	case tea.KeyEnter, tea.KeyDown:
		if m.atEnd() {
			m.finishRun()
			return m, nil
		}
		m.moveLine(1)
	case tea.KeyUp:
		m.moveLine(-1)
	case tea.KeyTab:
		m.typeRunes([]rune{'\t'})
	case tea.KeySpace:
		m.typeRunes([]rune{' '})
	case tea.KeyRunes:
		m.typeRunes(msg.Runes)
	}
	m.refreshContent()
	return m, nil
}

func (m *Model) idleThreshold() time.Duration {
	if m.config.IdleThresholdMs > 0 {
		return time.Duration(m.config.IdleThresholdMs) * time.Millisecond
	}
	return session.DefaultIdleThreshold
}

func (m *Model) typeRunes(runes []rune) {
	if len(m.target) == 0 {
		return
	}
	now := time.Now()
	for _, r := range runes {
		line := []rune(m.typed[m.cursor.Line-1])
		if m.cursor.Col > len(line) {
			m.cursor.Col = len(line)
		}
		line = append(line[:m.cursor.Col], append([]rune{r}, line[m.cursor.Col:]...)...)
		m.typed[m.cursor.Line-1] = string(line)
		m.cursor.Col++
	}
	m.clock = m.clock.Touch(now)
}

func (m *Model) handleBackspace() {
	if m.cursor.Col == 0 {
		return
	}
	line := []rune(m.typed[m.cursor.Line-1])
	if m.cursor.Col > len(line) {
		m.cursor.Col = len(line)
	}
	if m.cursor.Col == 0 {
		return
	}
	line = append(line[:m.cursor.Col-1], line[m.cursor.Col:]...)
	m.typed[m.cursor.Line-1] = string(line)
	m.cursor.Col--
}

// moveLine moves to the next editable line, filling auto-skipped separators
// with the target text so they score as complete.
func (m *Model) moveLine(direction int) {
	pos, skipped := nav.NextPosition(m.target, m.cursor.Line, direction, m.config.AutoSkip)
	m.fillSeparators(skipped)
	m.landOn(pos)
}

func (m *Model) fillSeparators(lines []int) {
	for _, ln := range lines {
		m.typed[ln-1] = m.target[ln-1]
	}
}

// landOn places the cursor. An untouched line is prefilled with the target's
// indentation so typing resumes after it; a line with typed content resumes
// at its end.
func (m *Model) landOn(pos model.Position) {
	if len(m.target) == 0 {
		m.cursor = model.Position{Line: 1, Col: 0}
		return
	}
	typed := m.typed[pos.Line-1]
	if typed == "" && pos.Col > 0 {
		targetRunes := []rune(m.target[pos.Line-1])
		if pos.Col > len(targetRunes) {
			pos.Col = len(targetRunes)
		}
		m.typed[pos.Line-1] = string(targetRunes[:pos.Col])
	} else if typed != "" {
		pos.Col = len([]rune(typed))
	}
	m.cursor = pos
}

// atEnd reports whether the cursor sits on the last editable line with the
// whole line typed.
func (m *Model) atEnd() bool {
	if len(m.target) == 0 {
		return false
	}
	if m.cursor.Line != lastEditableLine(m.target, m.config.AutoSkip) {
		return false
	}
	typedRunes := len([]rune(m.typed[m.cursor.Line-1]))
	return typedRunes >= len([]rune(m.target[m.cursor.Line-1]))
}

func lastEditableLine(target []string, autoSkip bool) int {
	if len(target) == 0 {
		return 1
	}
	if !autoSkip {
		return len(target)
	}
	for line := len(target); line >= 1; line-- {
		if !nav.IsSeparatorLine(target[line-1]) {
			return line
		}
	}
	return len(target)
}

func (m *Model) finishRun() {
	// Trailing separators count as completed.
	if m.config.AutoSkip {
		for line := m.cursor.Line + 1; line <= len(m.target); line++ {
			if nav.IsSeparatorLine(m.target[line-1]) {
				m.typed[line-1] = m.target[line-1]
			}
		}
	}
	m.clock = m.clock.Pause()
	elapsed := m.clock.Elapsed(time.Now())

	totalCorrect, totalTyped := score.ScoreDocument(m.target, m.typed)
	m.finalWPM, m.finalAcc = score.ComputeStats(totalCorrect, totalTyped, elapsed)
	m.finished = true

	ctx := context.Background()
	rec := model.SessionRecord{
		Path:           m.path,
		StartedAt:      m.startedAt,
		EndedAt:        time.Now(),
		CorrectChars:   totalCorrect,
		TypedChars:     totalTyped,
		DurationMs:     elapsed.Milliseconds(),
		PreservedLines: m.preservedLines,
		TotalLines:     len(m.target),
	}
	if _, err := m.store.InsertSession(ctx, rec); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
	if err := m.store.DeleteProgress(ctx, m.path); err != nil {
		logErrf("failed to clear progress: %v\n", err)
	}
}

func (m *Model) saveProgress() {
	if m.finished {
		return
	}
	m.clock = m.clock.Pause()
	err := m.store.SaveProgress(context.Background(), model.Progress{
		Path:          m.path,
		TargetLines:   m.target,
		TypedLines:    m.typed,
		Cursor:        m.cursor,
		AccumulatedMs: m.clock.AccumulatedMs,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		m.saveErr = err.Error()
		logErrf("failed to save progress: %v\n", err)
		return
	}
	m.saveErr = ""
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	if m.finished {
		return m.finishedView()
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	gutterWidth := len(fmt.Sprintf("%d", len(m.target)))
	var b strings.Builder
	for i, targetLine := range m.target {
		cursorCol := -1
		if i+1 == m.cursor.Line {
			cursorCol = m.cursor.Col
		}
		b.WriteString(gutterStyle.Render(fmt.Sprintf("%*d ", gutterWidth, i+1)))
		b.WriteString(renderLine(targetLine, m.typed[i], cursorCol, m.config.TabWidth))
		if i != len(m.target)-1 {
			b.WriteByte('\n')
		}
	}
	m.viewport.SetContent(b.String())
	m.scrollToCursor()
}

// scrollToCursor keeps the cursor's line inside the viewport.
func (m *Model) scrollToCursor() {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	line := m.cursor.Line - 1
	if line < top {
		m.viewport.SetYOffset(line)
	} else if line > bottom {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m *Model) renderHeader() string {
	name := filepath.Base(m.path)
	note := ""
	if m.remapped {
		note = fmt.Sprintf(" (resumed, file changed: %d/%d lines kept)", m.preservedLines, len(m.target))
	} else if m.resumed {
		note = " (resumed)"
	}
	return headerStyle.Render(truncate(name+note, m.width))
}

func (m *Model) renderFooter() string {
	now := time.Now()
	totalCorrect, totalTyped := score.ScoreDocument(m.target, m.typed)
	wpm, acc := score.ComputeStats(totalCorrect, totalTyped, m.clock.Elapsed(now))

	progress := 0
	if len(m.target) > 0 {
		progress = (m.cursor.Line - 1) * 100 / len(m.target)
	}
	segments := []string{
		fmt.Sprintf("Line %d/%d (%d%%)", m.cursor.Line, len(m.target), progress),
		fmt.Sprintf("%d WPM", wpm),
		fmt.Sprintf("%d%%", acc),
		m.clock.Elapsed(now).Round(time.Second).String(),
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if !m.clock.Running() && m.clock.AccumulatedMs > 0 {
		footer += pausedStyle.Render("  paused")
	}
	if m.statusMsg != "" {
		footer += footerStyle.Render("  " + m.statusMsg)
	}
	if m.saveErr != "" {
		footer += mismatchStyle.Render("  save failed")
	}
	return truncate(footer, m.width)
}

func (m *Model) finishedView() string {
	lines := []string{
		"Done!",
		"",
		fmt.Sprintf("%d WPM", m.finalWPM),
		fmt.Sprintf("%d%% accuracy", m.finalAcc),
		(time.Duration(m.clock.AccumulatedMs) * time.Millisecond).Round(time.Second).String() + " active",
		"",
		footerStyle.Render("press any key to quit"),
	}
	content := strings.Join(lines, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
