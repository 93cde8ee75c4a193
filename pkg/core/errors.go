package core

import "errors"

// Common errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRatio   = errors.New("invalid split ratio")
	ErrInvalidStatus  = errors.New("invalid review status")
	ErrInvalidLevel   = errors.New("invalid fix level")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrToolNotFound   = errors.New("external tool not found")
	ErrInvalidGrade   = errors.New("invalid grade")
)
