package client

import "errors"

var ErrClient = errors.New("client error")
