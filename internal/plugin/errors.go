package plugin

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

var (
	// ErrThemeLink indicates a theme that cannot be linked. Fatal to the build.
	ErrThemeLink = errors.LinkError("theme failed to link").Build()

	// ErrHookLink indicates a hook that cannot be linked. Fatal to the build.
	ErrHookLink = errors.LinkError("hook failed to link").Build()

	// ErrThemeRender indicates a theme fault while rendering one task.
	ErrThemeRender = errors.RenderError("theme render fault").Build()

	// ErrHookFailed indicates a hook error or panic while running one task.
	ErrHookFailed = errors.HookError("lifecycle hook failed").Build()
)

func classify(sentinel *errors.ClassifiedError, component, op string, cause error) error {
	b := errors.WrapError(&ComponentError{Component: component, Op: op, Err: cause}, sentinel.Category(), sentinel.Message()).
		WithContext("plugin", component).
		WithContext("operation", op)
	if sentinel.IsFatal() {
		b = b.Fatal()
	}
	return b.Build()
}

// panicError converts a recovered panic value into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
