package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// ErrorCategory routes an error to a report kind and a CLI exit code.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// CategoryParse is isolated to one article.
	CategoryParse ErrorCategory = "parse"

	// Sandboxed components.
	CategoryCapability ErrorCategory = "capability"
	CategoryHook       ErrorCategory = "hook"
	CategoryLink       ErrorCategory = "link"
	CategoryRender     ErrorCategory = "render"

	// CategoryCache is always fatal to the build.
	CategoryCache      ErrorCategory = "cache"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryNetwork    ErrorCategory = "network"
	CategoryBuild      ErrorCategory = "build"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity tells callers whether to keep going.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// ClassifiedError is an error with a category, a severity and structured
// fields for logging.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	fields   map[string]any
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }
func (e *ClassifiedError) IsFatal() bool           { return e.severity == SeverityFatal }

// Fields returns a copy of the structured fields.
func (e *ClassifiedError) Fields() map[string]any { return maps.Clone(e.fields) }

// Field returns one field rendered as a string.
func (e *ClassifiedError) Field(key string) (string, bool) {
	v, ok := e.fields[key]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// WithContext returns a copy of e carrying one more field.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	cp := *e
	cp.fields = maps.Clone(e.fields)
	if cp.fields == nil {
		cp.fields = map[string]any{}
	}
	cp.fields[key] = value
	return &cp
}

// Is matches sentinels by category and message, so a sentinel still matches
// after WithContext or when rebuilt with a cause.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsClassified reports whether the chain holds a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// HasCategory reports whether the first ClassifiedError in the chain is in category.
func HasCategory(err error, category ErrorCategory) bool {
	ce, ok := AsClassified(err)
	return ok && ce.category == category
}

// GetCategory returns the category of the chain, or CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if ce, ok := AsClassified(err); ok {
		return ce.category
	}
	return CategoryInternal
}

// IsFatal reports whether the chain carries a fatal ClassifiedError.
func IsFatal(err error) bool {
	ce, ok := AsClassified(err)
	return ok && ce.IsFatal()
}
