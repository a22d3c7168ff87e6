package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	// ErrUnauthenticated means no acting user identity was present. It always
	// aborts before any mutation.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the acting user exists but does not own the entity.
	ErrForbidden = errors.New("forbidden")
)
