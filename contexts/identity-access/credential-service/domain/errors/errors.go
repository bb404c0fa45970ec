package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrWeakPassword       = errors.New("password does not meet the minimum length")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrConflict           = errors.New("credential state conflict")
)
