package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is embedded in every token this service signs.
const Issuer = "ecommerce-api"

// tokenTypeRefresh is the discriminator carried only by refresh tokens.  An
// access token presented where a refresh token is required (or the other way
// round) is rejected by checking this field.
const tokenTypeRefresh = "refresh"

// Default token lifetimes.  The access TTL is configurable via
// ACCESS_TOKEN_TTL_HOURS; the refresh TTL is fixed at thirty days.
const (
	DefaultAccessTTL = 7 * 24 * time.Hour
	RefreshTTL       = 30 * 24 * time.Hour
)

// TokenClaims is the payload of every token issued by the service: the
// user's identity plus the registered claims (issuer, expiry, issued-at).
// TokenType is empty for access tokens and "refresh" for refresh tokens.
type TokenClaims struct {
	UserID    uint64 `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the claims carry the refresh discriminator.
func (c *TokenClaims) IsRefresh() bool { return c.TokenType == tokenTypeRefresh }

// NewAccessToken signs an HS256 access token for a user.  ttl 0 falls back
// to DefaultAccessTTL; a negative ttl produces an already-expired token.
func NewAccessToken(secret string, userID uint64, email, role string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultAccessTTL
	}
	return signToken(secret, userID, email, role, "", ttl)
}

// NewRefreshToken signs an HS256 refresh token for a user.  Refresh tokens
// carry the same identity claims as access tokens plus the refresh
// discriminator, and always live for RefreshTTL.
func NewRefreshToken(secret string, userID uint64, email, role string) (string, error) {
	return signToken(secret, userID, email, role, tokenTypeRefresh, RefreshTTL)
}

func signToken(secret string, userID uint64, email, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyToken parses and validates a signed token and returns its claims.
// The three failure kinds are distinguishable with errors.Is so callers can
// answer differently: ErrTokenExpired (valid signature, expiry passed),
// ErrTokenSignature (signature does not verify), ErrTokenMalformed (any
// other decoding failure).
func VerifyToken(secret, raw string) (*TokenClaims, error) {
	tok, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenSignature):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	claims, ok := tok.Claims.(*TokenClaims)
	if !ok || !tok.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// ExtractBearer pulls the raw token out of an Authorization header value.
// Pure string parsing; the three failure kinds mirror the ways a client can
// get the header wrong: absent entirely, wrong scheme, or "Bearer" with
// nothing after it.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrNoAuthHeader
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrBadAuthScheme
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return "", ErrEmptyBearer
	}
	return raw, nil
}

// TokenPreview returns a safe prefix of a token for log lines.  Full tokens
// must never be logged.
func TokenPreview(raw string) string {
	const n = 12
	if len(raw) <= n {
		return raw
	}
	return raw[:n] + "..."
}
