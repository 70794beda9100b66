package build

import (
	"context"
	stdErrors "errors"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
)

// ErrorKind classifies a task failure in the build report.
type ErrorKind string

const (
	KindParse      ErrorKind = "parse_error"
	KindCapability ErrorKind = "capability_violation"
	KindHook       ErrorKind = "hook_failure"
	KindThemeLink  ErrorKind = "theme_link_error"
	KindRender     ErrorKind = "theme_render_fault"
	KindCache      ErrorKind = "cache_store_error"
	KindOutput     ErrorKind = "output_error"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal_error"
)

// KindOf maps an error to its report kind using its classification.
func KindOf(err error) ErrorKind {
	if stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	switch errors.GetCategory(err) {
	case errors.CategoryParse:
		return KindParse
	case errors.CategoryCapability:
		return KindCapability
	case errors.CategoryHook:
		return KindHook
	case errors.CategoryLink:
		return KindThemeLink
	case errors.CategoryRender:
		return KindRender
	case errors.CategoryCache:
		return KindCache
	case errors.CategoryFileSystem:
		return KindOutput
	default:
		return KindInternal
	}
}

// ErrOutputWrite indicates a rendered file that could not be written. Fatal.
var ErrOutputWrite = errors.FileSystemError("failed to write output").Fatal().Build()

// ErrTasksFailed is returned by the CLI when a build completed with failed tasks.
var ErrTasksFailed = errors.BuildError("build completed with failed tasks").Build()

// ErrDrift is returned by the CLI when verification found cached pages that
// no longer match a fresh render.
var ErrDrift = errors.BuildError("cached output drifted from fresh render").Build()

// TaskError is the failure of one task.
type TaskError struct {
	Task incremental.Task
	Kind ErrorKind
	Err  error
}

// NewTaskError classifies err for task.
func NewTaskError(task incremental.Task, err error) *TaskError {
	return &TaskError{Task: task, Kind: KindOf(err), Err: err}
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Task, e.Kind, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Failure is the report form of a TaskError.
type Failure struct {
	Task    string    `json:"task"`
	Path    string    `json:"path,omitempty"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Failure returns the serializable form of e.
func (e *TaskError) Failure() Failure {
	return Failure{Task: e.Task.String(), Path: e.Task.Path, Kind: e.Kind, Message: e.Err.Error()}
}
