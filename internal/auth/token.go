package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeAccess        = "access"
	purposePasswordReset = "password_reset"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrSecretMissing = errors.New("token secret is required")
)

type claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens. Access and password reset
// tokens carry different purposes and are not interchangeable.
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

// NewTokenManager builds a TokenManager signing with secret.
func NewTokenManager(secret string, accessTTL, resetTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	return &TokenManager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
		now:       time.Now,
	}, nil
}

// AccessTTL is the lifetime of issued access tokens.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// ResetTTL is the lifetime of password reset tokens.
func (m *TokenManager) ResetTTL() time.Duration { return m.resetTTL }

func (m *TokenManager) IssueAccessToken(email string) (string, error) {
	return m.issue(email, purposeAccess, m.accessTTL)
}

func (m *TokenManager) ParseAccessToken(token string) (string, error) {
	return m.parse(token, purposeAccess)
}

func (m *TokenManager) IssueResetToken(email string) (string, error) {
	return m.issue(email, purposePasswordReset, m.resetTTL)
}

func (m *TokenManager) ParseResetToken(token string) (string, error) {
	return m.parse(token, purposePasswordReset)
}

func (m *TokenManager) issue(subject, purpose string, ttl time.Duration) (string, error) {
	now := m.now()
	c := claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token, purpose string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Purpose != purpose || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}
