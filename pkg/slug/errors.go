package slug

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingSlugValue     = errors.New("missing slug value")
	ErrDuplicatePlaceholder = errors.New("duplicate placeholder")
)

// MissingSlugValueError reports a placeholder that had no usable value and
// whose segment could not be dropped from the path.
type MissingSlugValueError struct {
	Placeholder string
}

func (e *MissingSlugValueError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingSlugValue, e.Placeholder)
}

// Is makes errors.Is(err, ErrMissingSlugValue) hold.
func (e *MissingSlugValueError) Is(target error) bool {
	return target == ErrMissingSlugValue
}
