package fetch

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidSlug   = errors.New("invalid slug")
	ErrInvalidParams = errors.New("invalid parameters")
)
