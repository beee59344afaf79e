package endpoint

import "errors"

var ErrEndpoint = errors.New("endpoint error")
