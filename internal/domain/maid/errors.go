package maid

import "errors"

var (
	ErrNotFound     = errors.New("maid not found")
	ErrInvalidInput = errors.New("invalid maid data")
)
