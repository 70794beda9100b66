package build

import (
	"slices"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

// Status is the overall outcome of a build.
type Status string

const (
	// StatusSuccess means every task succeeded.
	StatusSuccess Status = "success"
	// StatusPartial means the build completed with task failures.
	StatusPartial Status = "partial"
	// StatusFailed means the build aborted on a fatal error.
	StatusFailed Status = "failed"
	// StatusCanceled means the context was cancelled.
	StatusCanceled Status = "canceled"
)

func (s Status) outcome() metrics.BuildOutcomeLabel {
	switch s {
	case StatusSuccess:
		return metrics.BuildOutcomeSuccess
	case StatusPartial:
		return metrics.BuildOutcomePartial
	case StatusCanceled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}

// TaskState is the final state of one task.
type TaskState string

const (
	TaskPending  TaskState = "pending"
	TaskRendered TaskState = "rendered"
	TaskCached   TaskState = "cached"
	TaskFailed   TaskState = "failed"
)

// Drift is a cached page whose fresh rendering differs from the cached bytes.
type Drift struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	Diff        string `json:"diff"`
}

// Report summarizes one build.
type Report struct {
	BuildID  string             `json:"build_id"`
	Status   Status             `json:"status"`
	Revision workspace.Revision `json:"revision"`
	Started  time.Time          `json:"started"`
	Duration time.Duration      `json:"duration"`

	Articles  int `json:"articles"`
	Changed   int `json:"changed"`
	Rendered  int `json:"rendered"`
	Skipped   int `json:"skipped"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
	Swept     int `json:"swept"`

	Index TaskState `json:"index"`

	Tasks  map[string]TaskState `json:"tasks"`
	Errors []Failure            `json:"errors,omitempty"`
	Drift  []Drift              `json:"drift,omitempty"`
}

// OK reports whether the build completed without task failures.
func (r *Report) OK() bool { return r.Status == StatusSuccess }

// State returns the final state of task.
func (r *Report) State(task incremental.Task) TaskState {
	if s, ok := r.Tasks[task.String()]; ok {
		return s
	}
	return TaskPending
}

// collector gathers task outcomes from concurrent render goroutines.
type collector struct {
	mu       sync.Mutex
	report   *Report
	errs     []*TaskError
	recorder metrics.Recorder
}

func newCollector(r *Report, rec metrics.Recorder) *collector {
	return &collector{report: r, recorder: rec}
}

func (c *collector) done(task incremental.Task, state TaskState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Tasks[task.String()] = state
	switch state {
	case TaskRendered:
		c.report.Rendered++
		c.recorder.IncTaskResult(task.Kind.String(), metrics.ResultRendered)
	case TaskCached:
		c.report.Skipped++
		c.recorder.IncTaskResult(task.Kind.String(), metrics.ResultCached)
	}
	if task.Kind == incremental.TaskIndex {
		c.report.Index = state
	}
}

func (c *collector) fail(te *TaskError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Tasks[te.Task.String()] = TaskFailed
	if te.Task.Kind == incremental.TaskIndex {
		c.report.Index = TaskFailed
	} else {
		c.report.Failed++
	}
	c.errs = append(c.errs, te)
	c.recorder.IncTaskResult(te.Task.Kind.String(), metrics.ResultFailed)
	c.recorder.IncTaskError(string(te.Kind))
}

func (c *collector) drift(d Drift) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Drift = append(c.report.Drift, d)
}

// failedPaths returns the article paths whose page or parse failed.
func (c *collector) failedPaths() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]struct{}, len(c.errs))
	for _, te := range c.errs {
		if te.Task.Kind == incremental.TaskPage {
			out[te.Task.Path] = struct{}{}
		}
	}
	return out
}

// finish orders the collected errors and drift deterministically.
func (c *collector) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	slices.SortFunc(c.errs, func(a, b *TaskError) int {
		if a.Task.Kind != b.Task.Kind {
			return int(a.Task.Kind) - int(b.Task.Kind)
		}
		return strings.Compare(a.Task.Path, b.Task.Path)
	})
	c.report.Errors = make([]Failure, 0, len(c.errs))
	for _, te := range c.errs {
		c.report.Errors = append(c.report.Errors, te.Failure())
	}
	slices.SortFunc(c.report.Drift, func(a, b Drift) int { return strings.Compare(a.Path, b.Path) })
}
