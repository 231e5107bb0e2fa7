package catalog

import "errors"

var ErrUnknownEndpoint = errors.New("unknown endpoint")
