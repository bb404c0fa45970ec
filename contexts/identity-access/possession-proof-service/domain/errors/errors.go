package errors

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidChannel    = errors.New("invalid proof channel")
	ErrChallengeNotFound = errors.New("proof challenge not found")
	ErrCodeMismatch      = errors.New("proof code does not match")
	ErrChallengeExpired  = errors.New("proof challenge has expired")
	ErrChallengeResolved = errors.New("proof challenge is already resolved")
	ErrDependencyTimeout = errors.New("code delivery timed out")
	ErrConflict          = errors.New("proof challenge state conflict")
)
