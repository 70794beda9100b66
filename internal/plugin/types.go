package plugin

import "fmt"

// Kind separates pure themes from capability-holding hooks.
type Kind string

const (
	KindTheme Kind = "theme"
	KindHook  Kind = "hook"
)

func (k Kind) valid() bool { return k == KindTheme || k == KindHook }

// Stages reported in ComponentError.
const (
	OpLink           = "link"
	OpPreRender      = "pre_render"
	OpPreRenderIndex = "pre_render_index"
	OpPostRender     = "post_render"
	OpGeneratePage   = "generate_page"
	OpGenerateIndex  = "generate_index"
)

// ComponentError names the component and stage behind a failure. It sits
// under the classified error so callers can still match sentinels.
type ComponentError struct {
	Component string // name@version
	Op        string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Component, e.Op, e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }
