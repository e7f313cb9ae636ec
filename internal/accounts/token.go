package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gatehouse/gatehouse/internal/shared"
)

const tokenIssuer = "gatehouse"

// TokenSigner issues and verifies the signed email-confirmation tokens. Tokens
// are HS256 JWTs carrying the email as subject and a TTL-bounded expiry.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner constructs a signer. TTL defaults to 24h when non-positive.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl}
}

// ConfirmationToken mints a confirmation token bound to the email.
func (t *TokenSigner) ConfirmationToken(email string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ConfirmationEmail verifies a token and returns the email it is bound to.
// Any parse, signature, or expiry failure surfaces as shared.ErrInvalidToken.
func (t *TokenSigner) ConfirmationEmail(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, shared.ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", shared.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", shared.ErrInvalidToken
	}
	return claims.Subject, nil
}
