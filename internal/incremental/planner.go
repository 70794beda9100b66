package incremental

// TaskKind distinguishes the two task shapes a build knows about.
type TaskKind int

const (
	TaskPage TaskKind = iota
	TaskIndex
)

func (k TaskKind) String() string {
	if k == TaskIndex {
		return "index"
	}
	return "page"
}

// Task is a unit of render work. Page tasks carry the article path.
type Task struct {
	Kind TaskKind
	Path string
}

// PageTask returns a task that renders the article at path.
func PageTask(path string) Task { return Task{Kind: TaskPage, Path: path} }

// IndexTask returns the index task.
func IndexTask() Task { return Task{Kind: TaskIndex} }

func (t Task) String() string {
	if t.Kind == TaskIndex {
		return "index"
	}
	return "page:" + t.Path
}

// Plan schedules one page task per changed article followed by the index
// task. The index is always planned: even a build with no changes re-renders
// it. Unchanged articles get no task but are still parsed, because the index
// needs their previews.
func Plan(d Delta) []Task {
	tasks := make([]Task, 0, len(d.Changed)+1)
	for _, r := range d.Changed {
		tasks = append(tasks, PageTask(r.Path()))
	}
	return append(tasks, IndexTask())
}
