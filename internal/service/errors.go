package service

import "errors"

// Typed errors returned by the lifecycle operations. The HTTP boundary
// maps them to status codes; the core never maps them itself.
var (
	// ErrValidation reports caller-fixable bad input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound means no record exists for the id.
	ErrNotFound = errors.New("secret not found")
	// ErrExpired means the record existed but its expiry has passed. From
	// the recipient's view it is as gone as ErrNotFound.
	ErrExpired = errors.New("secret has expired")
	// ErrConsumed means a one-time secret was already viewed.
	ErrConsumed = errors.New("one-time secret has already been viewed")
	// ErrWrongPassword means the supplied reveal password did not verify.
	ErrWrongPassword = errors.New("invalid password")
	// ErrUnauthorized means the operation needs an authenticated caller.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden covers both a missing record and an ownership mismatch
	// on owner-scoped operations, so callers cannot probe for existence.
	ErrForbidden = errors.New("permission denied")
)
