package service

import "errors"

var (
	// ErrNoMatch is returned when credentials do not match any credentials user
	ErrNoMatch = errors.New("no matching credentials")

	// ErrValidation wraps client input errors
	ErrValidation = errors.New("validation failed")

	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidSession is returned for missing, malformed, expired or revoked session tokens
	ErrInvalidSession = errors.New("invalid session")

	// ErrRateLimited is returned when a client exceeds its request limit
	ErrRateLimited = errors.New("rate limit exceeded")
)
