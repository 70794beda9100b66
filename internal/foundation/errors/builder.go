package errors

import "maps"

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a non-fatal error in category.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{category: category, severity: SeverityError, message: message}}
}

// WrapError starts an error in category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.err.cause = err
	return b
}

// WithContext adds a structured field.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	if b.err.fields == nil {
		b.err.fields = map[string]any{}
	}
	b.err.fields[key] = value
	return b
}

// Fatal marks the error as stopping the build.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// Warning marks the error as degraded but recoverable.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

// Build returns the error. The builder may be reused.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	e.fields = maps.Clone(b.err.fields)
	return &e
}

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// ParseError is never fatal; the article is skipped.
func ParseError(message string) *ErrorBuilder { return NewError(CategoryParse, message) }

// CapabilityError is raised when a sandbox refuses an ungranted capability.
func CapabilityError(message string) *ErrorBuilder { return NewError(CategoryCapability, message) }

func HookError(message string) *ErrorBuilder { return NewError(CategoryHook, message) }

// LinkError aborts the build before any task runs.
func LinkError(message string) *ErrorBuilder { return NewError(CategoryLink, message).Fatal() }

func RenderError(message string) *ErrorBuilder { return NewError(CategoryRender, message) }

// CacheError aborts the build.
func CacheError(message string) *ErrorBuilder { return NewError(CategoryCache, message).Fatal() }

func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }

func NetworkError(message string) *ErrorBuilder { return NewError(CategoryNetwork, message) }

func BuildError(message string) *ErrorBuilder { return NewError(CategoryBuild, message).Fatal() }

func InternalError(message string) *ErrorBuilder { return NewError(CategoryInternal, message).Fatal() }
