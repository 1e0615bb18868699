package auth

import "errors"

var (
	// ErrValidation is returned when a required input is missing.
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when the username or email is already taken.
	ErrConflict = errors.New("username or email already exists")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)
