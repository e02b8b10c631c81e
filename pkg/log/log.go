// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 12 // Width for status text
)

// 📊 FileState is the outcome of rewriting one file
type FileState string

const (
	StateModified  FileState = "modified"
	StateUnchanged FileState = "unchanged"
	StateDryRun    FileState = "dry-run"
	StateFailed    FileState = "failed"
)

// 🎯 FileOperation represents a rewritten file for logging
type FileOperation struct {
	Path     string    // File path
	State    FileState // Outcome
	Matched  int       // Lines that contained the pattern
	Accepted int       // Replacements accepted
	Rejected int       // Replacements rejected
	Err      error     // Failure, when State is StateFailed
}

// 📦 RunOperation describes one invocation across all files
type RunOperation struct {
	Expression string // Search expression as given
	Files      int    // Number of files to process
	DryRun     bool   // Whether commits are suppressed
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentRun *RunOperation
	operations []FileOperation
}

// 🏭 New creates a new logger printing to console. Structured events at
// level and above go to diag.
func New(console, diag io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = diag
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a silent one if none was set
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return New(io.Discard, io.Discard, zerolog.Disabled)
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.State {
	case StateFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case StateModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case StateDryRun:
		symbol = '?'
		symbolColor = color.FgYellow
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	detail := fmt.Sprintf("%d/%d accepted", op.Accepted, op.Matched)
	if op.State == StateFailed && op.Err != nil {
		detail = op.Err.Error()
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, op.State)),
		color.New(color.Faint).Sprint(detail))
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	ev := l.zlog.Info()
	if op.State == StateFailed {
		ev = l.zlog.Error().Err(op.Err)
	}
	ev.Str("file", op.Path).
		Str("state", string(op.State)).
		Int("matched", op.Matched).
		Int("accepted", op.Accepted).
		Int("rejected", op.Rejected).
		Msg("file operation")
}

// 📝 StartRun starts a new run over a set of files
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRun = &op
	l.operations = nil

	mode := "rewrite"
	if op.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Expression),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d file(s), %s", op.Files, mode))

	l.zlog.Info().
		Str("expression", op.Expression).
		Int("files", op.Files).
		Bool("dry_run", op.DryRun).
		Msg("starting run")
}

// 📝 EndRun ends the current run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentRun == nil {
		return
	}

	failed := 0
	for _, op := range l.operations {
		if op.State == StateFailed {
			failed++
		}
	}

	if failed > 0 {
		l.failure(fmt.Sprintf("%d of %d file(s) failed", failed, len(l.operations)))
	} else {
		l.success(fmt.Sprintf("%d file(s) processed", len(l.operations)))
	}
	if l.currentRun.DryRun {
		l.info("dry run, no files were written")
	}

	l.zlog.Info().
		Str("expression", l.currentRun.Expression).
		Int("files", len(l.operations)).
		Int("failed", failed).
		Msg("run complete")

	l.currentRun = nil
	l.operations = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// callers of the helpers below hold l.mu

func (l *Logger) success(msg string) {
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
}

func (l *Logger) failure(msg string) {
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
}

func (l *Logger) info(msg string) {
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
}
