package errors

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// exitCodes maps categories to process exit codes. Unclassified errors exit 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryConfig:     7,
	CategoryNetwork:    8,
	CategoryLink:       9,
	CategoryInternal:   10,
	CategoryBuild:      11,
	CategoryFileSystem: 11,
	CategoryParse:      11,
	CategoryHook:       11,
	CategoryCapability: 11,
	CategoryRender:     11,
	CategoryCache:      13,
}

// CLIErrorAdapter turns errors into log records, messages and exit codes.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor returns 0 for nil.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	ce, ok := AsClassified(err)
	if !ok {
		return 1
	}
	if code, ok := exitCodes[ce.Category()]; ok {
		return code
	}
	return 1
}

// FormatError renders err for the terminal. Without --verbose the cause
// chain is hidden.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ce, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose || ce.Unwrap() == nil {
		return err.Error()
	}
	return fmt.Sprintf("Error: %s (use -v for details)", ce.Message())
}

// LogError logs err at a level derived from its severity, with its fields
// as sorted attributes.
func (a *CLIErrorAdapter) LogError(err error) {
	if err == nil {
		return
	}
	ce, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := []slog.Attr{
		slog.String("category", string(ce.Category())),
		slog.String("error", err.Error()),
	}
	fields := ce.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	level := slog.LevelError
	if ce.Severity() == SeverityWarning {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, ce.Message(), attrs...)
}
