// Package cli implements the attacktree command-line interface.
//
// This package provides commands for laying out attack trees, exporting them
// as Mermaid diagrams, rendering node-link drawings, browsing trees in the
// terminal and serving the pipeline over HTTP. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute node coordinates and edges as JSON
//   - export: Generate Mermaid flowchart text
//   - render: Generate SVG, PDF, PNG or DOT drawings
//   - inspect: Browse a tree interactively
//   - list: List stored assessments
//   - serve: Run the HTTP API
//   - cache: Manage the layout and diagram cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// stderr so command output can be piped.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Exported 12 nodes (3ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
