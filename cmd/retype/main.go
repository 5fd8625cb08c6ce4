// Package main provides the CLI entrypoint for retype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/retype/internal/align"
	"github.com/verte-zerg/retype/internal/config"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/store"
	"github.com/verte-zerg/retype/internal/tui"
)

const (
	defaultAutoSkip        = true
	defaultIdleThresholdMs = 2000
	defaultTabWidth        = 4
	defaultCurveWindow     = 10
)

var (
	practiceAutoSkip      bool
	practiceIdleThreshold int
	practiceTabWidth      int
	practiceRestart       bool

	statsPath        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "retype <file>",
		Short:         "Re-type real files in the terminal",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().BoolVar(&practiceAutoSkip, "auto-skip", defaultAutoSkip, "auto-complete separator lines")
	rootCmd.Flags().IntVar(&practiceIdleThreshold, "idle-threshold", defaultIdleThresholdMs, "pause after this many idle milliseconds")
	rootCmd.Flags().IntVar(&practiceTabWidth, "tab-width", defaultTabWidth, "display width of tab stops")
	rootCmd.Flags().BoolVar(&practiceRestart, "restart", false, "discard saved progress and start over")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "auto-skip", &practiceAutoSkip, fileCfg.Practice.AutoSkip)
	applyIntConfig(cmd, "idle-threshold", &practiceIdleThreshold, fileCfg.Practice.IdleThresholdMs)
	applyIntConfig(cmd, "tab-width", &practiceTabWidth, fileCfg.Practice.TabWidth)

	cfg := model.Config{
		AutoSkip:        practiceAutoSkip,
		IdleThresholdMs: practiceIdleThreshold,
		TabWidth:        practiceTabWidth,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	target, err := loadTarget(path)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sess := restoreSession(st, path, target, practiceRestart)

	program := tea.NewProgram(tui.NewModel(cfg, st, sess), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadTarget reads a file into lines for typing against.
func loadTarget(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read target file: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, fmt.Errorf("target file is empty: %s", path)
	}
	return strings.Split(text, "\n"), nil
}

// restoreSession loads saved progress for the file and re-anchors it when the
// target has changed since the save. Any failure degrades to a fresh session.
func restoreSession(st *store.Store, path string, target []string, restart bool) tui.Session {
	fresh := tui.Session{Path: path, Target: target}
	if restart {
		return fresh
	}
	ctx := context.Background()
	prog, err := st.LoadProgress(ctx, path)
	if err != nil {
		logErrf("failed to load progress: %v\n", err)
		return fresh
	}
	if prog == nil {
		return fresh
	}
	if equalLines(prog.TargetLines, target) {
		return tui.Session{
			Path:           path,
			Target:         target,
			Typed:          prog.TypedLines,
			Cursor:         prog.Cursor,
			AccumulatedMs:  prog.AccumulatedMs,
			Resumed:        true,
			PreservedLines: len(target),
		}
	}
	res, err := align.Remap(prog.TargetLines, target, prog.TypedLines, prog.Cursor)
	if err != nil {
		logErrf("target changed beyond recognition; starting fresh\n")
		return fresh
	}
	return tui.Session{
		Path:           path,
		Target:         target,
		Typed:          res.Lines,
		Cursor:         res.Cursor,
		AccumulatedMs:  prog.AccumulatedMs,
		Resumed:        true,
		Remapped:       true,
		PreservedLines: res.PreservedCount,
	}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Show stats",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)

	if len(args) == 1 {
		if statsPath, err = filepath.Abs(args[0]); err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{
		Path:  statsPath,
		Since: sinceTime,
	})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if statsLast > 0 && len(sessions) > statsLast {
		sessions = sessions[len(sessions)-statsLast:]
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, sessions); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderCurves(out, sessions, statsCurveWindow, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if cfg.IdleThresholdMs <= 0 {
		return fmt.Errorf("--idle-threshold must be > 0")
	}
	if cfg.TabWidth <= 0 {
		return fmt.Errorf("--tab-width must be > 0")
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# retype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# auto-skip = %t          # Auto-complete separator lines
# idle-threshold-ms = %d  # Pause after this many idle milliseconds
# tab-width = %d          # Display width of tab stops

[stats]
# curve-window = %d       # Moving average window for learning curves
`,
		defaultAutoSkip,
		defaultIdleThresholdMs,
		defaultTabWidth,
		defaultCurveWindow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
