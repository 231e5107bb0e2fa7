package endpoint

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidDefinition = errors.New("invalid endpoint definition")
)
