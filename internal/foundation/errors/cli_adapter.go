package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns a command error into a message and an exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor maps err to the process exit code: 0 for nil, 1 for
// unclassified errors, otherwise the code of its category.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	ce, ok := AsClassified(err)
	if !ok {
		return 1
	}
	return profileOf(ce.category).exitCode
}

// FormatError renders err for the terminal.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ce, ok := AsClassified(err)
	switch {
	case !ok:
		return "Error: " + err.Error()
	case a.verbose:
		return ce.Error()
	case profileOf(ce.category).opaque:
		return "Internal error occurred (use -v for details)"
	}
	return "Error: " + ce.message
}

// HandleError reports err and exits. It returns without exiting for nil.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	a.log(err)
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

// log writes fatal and unclassified errors, and everything when verbose.
func (a *CLIErrorAdapter) log(err error) {
	ce, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", slog.Any("error", err))
		return
	}
	if !a.verbose && ce.severity != SeverityFatal {
		return
	}
	level := slog.LevelError
	if ce.severity == SeverityWarning {
		level = slog.LevelWarn
	}
	attrs := make([]slog.Attr, 0, len(ce.context)+2)
	attrs = append(attrs, slog.String("category", string(ce.category)))
	for k, v := range ce.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if ce.retry == RetryBackoff {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	if ce.cause != nil {
		attrs = append(attrs, slog.String("cause", ce.cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), level, ce.message, attrs...)
}
