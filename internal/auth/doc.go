// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth manages account credentials and bearer tokens.
//
// # Components
//
//   - PasswordHasher - salted, adaptive one-way hashing with constant-time
//     verification (Argon2idHasher is the production implementation)
//   - TokenIssuer - stateless signed, expiring bearer tokens bound to an
//     account's numeric identity (JWTIssuer is the production implementation)
//   - AccountStore - durable account records keyed by a unique username
//     (the postgres subpackage is the production implementation)
//   - Service - orchestrates the three into register, authenticate,
//     rotate-password, and delete-account
//
// Every operation returns a typed error carrying an AUTH_* code; no
// collaborator error crosses the Service boundary unmapped. Tokens are bound
// to the immutable numeric account id, never the username, so rotating a
// password cannot transfer a username's identity.
package auth
