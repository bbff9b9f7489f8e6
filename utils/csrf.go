package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CSRFCookieName holds the per-browser id the form token is bound to.
	CSRFCookieName = "blogly_csrf"
	// CSRFFormField is the hidden input every form posts back.
	CSRFFormField = "csrf_token"
	// CSRFHeader is accepted instead of the form field for scripted clients.
	CSRFHeader = "X-CSRF-Token"
	// CSRFContextKey is where the middleware leaves the token for templates.
	CSRFContextKey = "csrf_token"

	csrfIssuer = "blogly"
)

var ErrInvalidCSRFToken = errors.New("invalid csrf token")

// IssueCSRFToken signs a short lived HS256 token bound to browserID.
func IssueCSRFToken(secret []byte, browserID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    csrfIssuer,
		Subject:   browserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign csrf token: %w", err)
	}
	return signed, nil
}

// VerifyCSRFToken checks the signature, expiry and browser binding of a token.
func VerifyCSRFToken(secret []byte, tokenStr, browserID string) error {
	if tokenStr == "" || browserID == "" {
		return ErrInvalidCSRFToken
	}
	_, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(csrfIssuer),
		jwt.WithSubject(browserID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCSRFToken, err)
	}
	return nil
}
