package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager("test-secret", "attendance-test", time.Hour)
	require.NoError(t, err)
	return tm
}

func TestNewTokenManager_RequiresSecretAndTTL(t *testing.T) {
	_, err := auth.NewTokenManager("", "issuer", time.Hour)
	assert.Error(t, err)

	_, err = auth.NewTokenManager("secret", "issuer", 0)
	assert.Error(t, err)
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := newTestTokenManager(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	token, expiresAt, err := tm.Issue("session-1", domain.UserTypeStudent, "ST001", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := tm.Validate(token, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, "ST001", claims.Subject)
	assert.Equal(t, domain.UserTypeStudent, claims.UserType)
}

func TestTokenManager_Validate_Expired(t *testing.T) {
	tm := newTestTokenManager(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	token, _, err := tm.Issue("session-1", domain.UserTypeAdmin, domain.AdminUserID, now)
	require.NoError(t, err)

	_, err = tm.Validate(token, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_Validate_WrongSecret(t *testing.T) {
	tm := newTestTokenManager(t)
	other, err := auth.NewTokenManager("other-secret", "attendance-test", time.Hour)
	require.NoError(t, err)
	now := time.Now()

	token, _, err := other.Issue("session-1", domain.UserTypeAdmin, domain.AdminUserID, now)
	require.NoError(t, err)

	_, err = tm.Validate(token, now)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Validate_WrongIssuer(t *testing.T) {
	tm := newTestTokenManager(t)
	other, err := auth.NewTokenManager("test-secret", "someone-else", time.Hour)
	require.NoError(t, err)
	now := time.Now()

	token, _, err := other.Issue("session-1", domain.UserTypeAdmin, domain.AdminUserID, now)
	require.NoError(t, err)

	_, err = tm.Validate(token, now)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Validate_RejectsUnsignedToken(t *testing.T) {
	tm := newTestTokenManager(t)
	now := time.Now()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		UserType: domain.UserTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "session-1",
			Issuer:    "attendance-test",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Validate(token, now)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Validate_Garbage(t *testing.T) {
	tm := newTestTokenManager(t)

	_, err := tm.Validate("not-a-token", time.Now())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
