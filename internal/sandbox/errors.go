package sandbox

import (
	stderrors "errors"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// ErrCapabilityViolation is the sentinel every violation matches with errors.Is.
var ErrCapabilityViolation = errors.CapabilityError("capability not granted").Build()

// ErrPathEscapes indicates a path that leaves its namespace.
var ErrPathEscapes = stderrors.New("path escapes namespace")

// Violation builds the classified error for component using capability c
// without a grant.
func Violation(component string, c Capability, detail error) error {
	if detail == nil {
		detail = fmt.Errorf("%s used %s", component, c)
	}
	return errors.WrapError(detail, errors.CategoryCapability, ErrCapabilityViolation.Message()).
		WithContext("component", component).
		WithContext("capability", string(c)).
		Build()
}
