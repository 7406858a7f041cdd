// Package contractlink builds time-limited signed URLs for rental
// contract documents. Links are handed to the payment gateway as dispute
// evidence, so they must outlive the request that created them but expire
// on their own.
package contractlink

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues and verifies signed contract links
type Signer struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
}

// NewSigner creates a Signer. baseURL is the public host links are built
// against, ttl bounds how long a link stays valid.
func NewSigner(secret, baseURL string, ttl time.Duration) *Signer {
	return &Signer{
		secret:  []byte(secret),
		baseURL: baseURL,
		ttl:     ttl,
	}
}

// SignedURL returns a time-limited URL for a contract document
func (s *Signer) SignedURL(contractID string) (string, error) {
	if contractID == "" {
		return "", fmt.Errorf("contract id is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   contractID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign contract link: %w", err)
	}

	return fmt.Sprintf("%s/contracts/%s?token=%s", s.baseURL, contractID, url.QueryEscape(token)), nil
}

// Verify checks a link token and returns the contract id it grants access
// to. Expired or tampered tokens fail.
func (s *Signer) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid contract link token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("contract link token has no subject")
	}

	return claims.Subject, nil
}
