package service

import "errors"

var (
	ErrMissingToken = errors.New("hub token is required")
)
