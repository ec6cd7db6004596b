package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", 30*time.Minute, 15*time.Minute)
	require.NoError(t, err)
	return m
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes), bcrypt.MinCost)
	assert.NoError(t, err)
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, otp)
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Minute, time.Minute)
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newManager(t)

	tok, err := m.IssueAccessToken("jane@example.com")
	require.NoError(t, err)

	email, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)
}

func TestTokens_PurposesAreNotInterchangeable(t *testing.T) {
	m := newManager(t)

	access, err := m.IssueAccessToken("jane@example.com")
	require.NoError(t, err)
	reset, err := m.IssueResetToken("jane@example.com")
	require.NoError(t, err)

	_, err = m.ParseResetToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseAccessToken(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	email, err := m.ParseResetToken(reset)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)
}

func TestAccessToken_Expired(t *testing.T) {
	m := newManager(t)
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	tok, err := m.IssueAccessToken("jane@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	m := newManager(t)
	other, err := NewTokenManager("other-secret", time.Minute, time.Minute)
	require.NoError(t, err)

	tok, err := other.IssueAccessToken("jane@example.com")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	m := newManager(t)
	c := claims{
		Purpose: purposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jane@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Empty(t *testing.T) {
	_, err := newManager(t).ParseAccessToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
