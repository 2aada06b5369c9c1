package model

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrInvalidOwner   = errors.New("invalid owner")
	ErrSelfConnection = errors.New("a person cannot be connected to themselves")
)
