package limiter

import "errors"

var (
	ErrLimitExceeded = errors.New("too many requests in progress")
)
