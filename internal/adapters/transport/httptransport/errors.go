package httptransport

import "errors"

var (
	ErrBodyTooLarge = errors.New("response body exceeds limit")
	ErrEncodeQuery  = errors.New("cannot encode query parameters")
	ErrEncodeBody   = errors.New("cannot encode request body")
)
