package storage

import "errors"

var (
	ErrNotFound     = errors.New("storage: not found")
	ErrInvalidCID   = errors.New("storage: invalid content id")
	ErrCIDMismatch  = errors.New("storage: content id mismatch")
	ErrImmutable    = errors.New("storage: immutable object mismatch")
	ErrUploadFailed = errors.New("storage: upload failed")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
