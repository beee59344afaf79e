package request

import "errors"

var (
	ErrRequestTooLarge = errors.New("request too large")
	ErrEmptyRequest    = errors.New("empty request")
	ErrRead            = errors.New("request read failed")
	ErrUnencodable     = errors.New("request not encodable")
)
