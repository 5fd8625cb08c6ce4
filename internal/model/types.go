// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	AutoSkip        bool
	IdleThresholdMs int
	TabWidth        int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Path        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Position addresses a point in a document: 1-based line, 0-based column.
type Position struct {
	Line int
	Col  int
}

// LineScore counts typed and correct characters for one target line.
type LineScore struct {
	CorrectChars int
	TypedChars   int
}

// Hunk describes a contiguous block of old lines replaced by a contiguous
// block of new lines. Either count may be zero, representing a pure insertion
// or deletion.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// RemapResult is a typed transcript re-anchored onto an edited target.
type RemapResult struct {
	Lines          []string
	Cursor         Position
	PreservedCount int
	TotalLines     int
}

// SessionRecord captures a completed typing run over a file.
type SessionRecord struct {
	ID             int64
	Path           string
	StartedAt      time.Time
	EndedAt        time.Time
	CorrectChars   int
	TypedChars     int
	DurationMs     int64
	PreservedLines int
	TotalLines     int
}

// Progress is a resumable session snapshot for one target file.
type Progress struct {
	Path          string
	TargetLines   []string
	TypedLines    []string
	Cursor        Position
	AccumulatedMs int64
	UpdatedAt     time.Time
}
