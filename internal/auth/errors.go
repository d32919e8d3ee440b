// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "errors"

// Sentinel errors shared between the service and its collaborators.
// Store adapters and the token issuer wrap these so callers can branch
// with errors.Is without depending on driver error types.
var (
	// ErrNotFound is returned when a requested account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert would violate username uniqueness.
	ErrConflict = errors.New("username already taken")

	// ErrTokenExpired is returned when a token's signature checks out but
	// its expiry has passed beyond the configured leeway.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for any other verification failure:
	// bad signature, wrong issuer, malformed token.
	ErrTokenInvalid = errors.New("token invalid")
)
