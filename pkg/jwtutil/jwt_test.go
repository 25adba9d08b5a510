package jwtutil

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestIssueValidateRoundTrip(t *testing.T) {
	j := NewJWTUtil(testKey, 24*time.Hour, nil)
	userID, tenantID := uuid.New(), uuid.New()

	token, expiresAt, err := j.Issue(userID, tenantID, "tenant_admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := j.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "tenant_admin", claims.Role)
}

func TestValidateRejectsUniformly(t *testing.T) {
	j := NewJWTUtil(testKey, 24*time.Hour, nil)
	userID, tenantID := uuid.New(), uuid.New()

	past := clock.NewMock()
	past.Set(time.Now().Add(-48 * time.Hour))
	expired, _, err := NewJWTUtil(testKey, 24*time.Hour, past).Issue(userID, tenantID, "user")
	require.NoError(t, err)

	forged, _, err := NewJWTUtil("another-key-another-key-another!", 24*time.Hour, nil).Issue(userID, tenantID, "user")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     "super_admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     "user",
	}).SignedString([]byte(testKey))
	require.NoError(t, err)

	noTenant, _, err := j.Issue(userID, uuid.Nil, "user")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"forged":    forged,
		"unsigned":  unsigned,
		"no expiry": noExpiry,
		"no tenant": noTenant,
		"garbage":   "not.a.token",
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			claims, err := j.Validate(token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateUsesInjectedClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC))
	j := NewJWTUtil(testKey, 24*time.Hour, mock)

	// issued and checked years in the past; wall-clock time would reject it
	token, _, err := j.Issue(uuid.New(), uuid.New(), "user")
	require.NoError(t, err)
	_, err = j.Validate(token)
	require.NoError(t, err)

	mock.Add(24*time.Hour - time.Second)
	_, err = j.Validate(token)
	require.NoError(t, err)

	mock.Add(2 * time.Second)
	claims, err := j.Validate(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsFutureIssuedToken(t *testing.T) {
	future := clock.NewMock()
	future.Set(time.Now().Add(time.Hour))
	token, _, err := NewJWTUtil(testKey, 24*time.Hour, future).Issue(uuid.New(), uuid.New(), "user")
	require.NoError(t, err)

	_, err = NewJWTUtil(testKey, 24*time.Hour, nil).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
