package db

import "errors"

var (
	ErrUnsupportedDriver = errors.New("db: unsupported driver")
	ErrClosed            = errors.New("db: client closed")
)
