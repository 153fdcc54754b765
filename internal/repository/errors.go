// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// database internals: for example a refresh token that is unknown, one that
// has expired, and one that was already rotated or revoked each map to a
// different response code, and the last one triggers full-session
// revocation.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or is
// soft-deleted. Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrTokenNotFound is returned when no refresh token row matches the
// presented hash. Handlers translate this into a 401 with TOKEN_INVALID.
var ErrTokenNotFound = errors.New("refresh token not found")

// ErrTokenExpired is returned when a matching refresh token row exists but
// its expiry has passed.
var ErrTokenExpired = errors.New("refresh token expired")

// ErrTokenReused is returned when the presented refresh token was already
// rotated or revoked. This is the theft-detection trigger: callers must
// revoke every active token of the owning user before answering.
var ErrTokenReused = errors.New("refresh token reuse detected")
