package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if ble, ok := As(err); ok {
		return exitCodeFromCategory(ble.Category)
	}

	return 1
}

func exitCodeFromCategory(c ErrorCategory) int {
	switch c {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryInternal:
		return 10
	case CategoryFileSystem:
		return 11
	case CategoryAudit:
		return 12
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	ble, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return ble.Error()
	}

	switch ble.Category {
	case CategoryConfig, CategoryValidation:
		return ble.Message
	default:
		if ble.Cause != nil {
			return fmt.Sprintf("%s: %s: %v", ble.Category, ble.Message, ble.Cause)
		}
		return fmt.Sprintf("%s: %s", ble.Category, ble.Message)
	}
}

// Handle logs and prints err and returns the exit code the process should use.
func (a *CLIErrorAdapter) Handle(err error) int {
	if err == nil {
		return 0
	}

	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if ble, ok := As(err); ok {
		return ble.Category == CategoryInternal
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	ble, ok := As(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{slog.String("category", string(ble.Category))}
	for k, v := range ble.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if ble.Cause != nil {
		attrs = append(attrs, slog.String("cause", ble.Cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), slogLevel(ble.Severity), ble.Message, attrs...)
}

func slogLevel(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
