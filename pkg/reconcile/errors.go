package reconcile

import (
	"errors"
	"fmt"
)

// ErrMissingParameter is matched by every *MissingParameterError.
var ErrMissingParameter = errors.New("missing required parameter")

// MissingParameterError reports a required bind or unbind field that is
// absent, empty or set to the unset sentinel. It is raised before any
// invocation.
type MissingParameterError struct {
	Field string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s is invalid or empty", e.Field)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// ErrDomainConflict is returned when the host is bound to a different
// domain than the one declared. adbind never rebinds implicitly.
var ErrDomainConflict = errors.New("bound to a different domain")
