package apperror

import "errors"

var (
	ErrConnClosed        = errors.New("connection is closed")
	ErrFrameTooLarge     = errors.New("frame exceeds maximum size")
	ErrUnknownMessage    = errors.New("unknown message kind")
	ErrTruncatedMessage  = errors.New("message body is truncated")
	ErrMatchNotInPlay    = errors.New("match is not in play")
	ErrSessionNotInMatch = errors.New("session is not a match participant")
)
