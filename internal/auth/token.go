// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenIssuerName is the fixed issuer claim embedded in every token.
const TokenIssuerName = "gatehouse"

// Token timing defaults. Both are configuration, not structure: callers
// override them through NewJWTIssuer.
const (
	DefaultTokenTTL    = 15 * time.Minute
	DefaultTokenLeeway = time.Second
)

// TokenIssuer creates and verifies signed, expiring bearer tokens.
// The subject is the decimal text of an account id; parsing it back into
// an identity is the caller's job, keeping the issuer agnostic of account
// semantics.
type TokenIssuer interface {
	// Issue signs a token for the given account identity.
	Issue(accountID int64, username string) (string, error)

	// Verify checks signature, issuer, and expiry, and returns the raw
	// subject string. Failures wrap ErrTokenExpired or ErrTokenInvalid.
	Verify(token string) (string, error)
}

// tokenClaims is the wire shape of a Gatehouse token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// JWTIssuer implements TokenIssuer with HMAC-SHA256 signatures.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. ttl and leeway fall back to the
// defaults when non-positive; now falls back to time.Now when nil.
func NewJWTIssuer(secret []byte, ttl, leeway time.Duration, now func() time.Time) (*JWTIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_TOKEN_CONFIG").Errorf("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if leeway <= 0 {
		leeway = DefaultTokenLeeway
	}
	if now == nil {
		now = time.Now
	}
	return &JWTIssuer{secret: secret, ttl: ttl, leeway: leeway, now: now}, nil
}

// Issue signs a token whose subject is the decimal form of accountID.
func (i *JWTIssuer) Issue(accountID int64, username string) (string, error) {
	issuedAt := i.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    TokenIssuerName,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
		Username: username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify recomputes the signature and checks issuer and expiry, allowing
// the configured clock-skew leeway. On success it returns the subject
// string unparsed.
func (i *JWTIssuer) Verify(token string) (string, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(i.leeway),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", oops.Code("AUTH_TOKEN_EXPIRED").Wrap(ErrTokenExpired)
		}
		return "", oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrTokenInvalid)
	}
	return claims.Subject, nil
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
