package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateURL = errors.New("url already exists")
	ErrBadQuery     = errors.New("malformed search query")
	ErrInvalidInput = errors.New("invalid input")
)
