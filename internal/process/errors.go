package process

import "errors"

var (
	ErrSpawn = errors.New("spawn failed")
	ErrRelay = errors.New("output relay failed")
	ErrWait  = errors.New("wait failed")
)
