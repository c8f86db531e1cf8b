package model

import "errors"

var (
	ErrEmptyPrompt   = errors.New("prompt is required")
	ErrMissingHTML   = errors.New("html content is required")
	ErrMissingTarget = errors.New("title or path is required")
)
