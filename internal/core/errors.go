package core

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateCode   = errors.New("room code already exists")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("message list changed")
	ErrUnauthorized    = errors.New("not allowed")
	ErrUnauthenticated = errors.New("unauthenticated")
)
