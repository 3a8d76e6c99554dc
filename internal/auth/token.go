package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"web-store/internal/domain"
)

var (
	// ErrSigningKeyMissing indicates the issuer was built without a secret key.
	ErrSigningKeyMissing = errors.New("token signing key is not configured")
	// ErrTokenMissing indicates no token was presented at all.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenMalformed indicates the token is not a parseable JWT.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrSignatureInvalid indicates the signature does not match the claims,
	// or the token was signed under a different method than policy mandates.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired indicates the token was valid but has passed its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrClaimsInvalid indicates a verified token carries unusable claims
	// (wrong issuer/audience, missing user id, unknown role).
	ErrClaimsInvalid = errors.New("token claims invalid")
)

// Claims is the JWT claim set carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
}

// TokenIssuer mints and verifies signed session tokens. It holds only
// immutable configuration and is safe for concurrent use.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenIssuer builds a TokenIssuer. The secret key must be non-empty.
func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSigningKeyMissing
	}
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// TTL returns the configured token lifetime, used to align the cookie lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue mints a signed HS256 token carrying the principal's identity and role.
func (t *TokenIssuer) Issue(p domain.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Login,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: p.UserID,
		Role:   p.Role.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature, signing method, issuer, audience, and
// expiry of a token and rebuilds the Principal from its claims. Failures map
// onto the sentinel errors above so callers can pick the right denial.
func (t *TokenIssuer) Verify(tokenString string) (domain.Principal, error) {
	if strings.TrimSpace(tokenString) == "" {
		return domain.Principal{}, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		// Pin the signing method so a token signed (or unsigned) under a
		// weaker scheme is rejected outright.
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Principal{}, mapTokenError(err)
	}
	if !token.Valid {
		return domain.Principal{}, ErrSignatureInvalid
	}

	if claims.UserID <= 0 {
		return domain.Principal{}, ErrClaimsInvalid
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.Principal{}, ErrClaimsInvalid
	}

	return domain.Principal{
		UserID: claims.UserID,
		Login:  claims.Subject,
		Role:   role,
	}, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return ErrClaimsInvalid
	default:
		return ErrTokenMalformed
	}
}
