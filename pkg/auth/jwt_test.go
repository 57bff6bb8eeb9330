package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestPair(t *testing.T, expiry time.Duration) (*JWTGenerator, *JWTValidator) {
	t.Helper()
	gen, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey:  testSecret,
		Issuer:     "flowbuilder-test",
		ExpiryTime: expiry,
	})
	require.NoError(t, err)
	val, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "flowbuilder-test",
	})
	require.NoError(t, err)
	return gen, val
}

func TestJWT_GenerateAndValidateRoundTrip(t *testing.T) {
	// Arrange
	gen, val := newTestPair(t, time.Hour)

	// Act
	token, err := gen.GenerateToken("user-1", "dev@example.com", []string{"authenticated"})
	require.NoError(t, err)
	claims, err := val.ValidateToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, []string{"authenticated"}, claims.Roles)
}

func TestJWT_ExpiredToken(t *testing.T) {
	// Arrange: a token that expired in the past
	gen, val := newTestPair(t, -time.Minute)

	token, err := gen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	// Act
	_, err = val.ValidateToken(token)

	// Assert
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWT_WrongSecret(t *testing.T) {
	// Arrange
	gen, _ := newTestPair(t, time.Hour)
	other, err := NewJWTValidator(JWTConfig{SecretKey: "a-different-secret"})
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	// Act
	_, err = other.ValidateToken(token)

	// Assert
	assert.Error(t, err)
}

func TestJWT_WrongIssuer(t *testing.T) {
	// Arrange
	gen, err := NewJWTGenerator(JWTGeneratorConfig{SecretKey: testSecret, Issuer: "someone-else"})
	require.NoError(t, err)
	_, val := newTestPair(t, time.Hour)

	token, err := gen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	// Act
	_, err = val.ValidateToken(token)

	// Assert
	assert.Error(t, err)
}

func TestJWT_GarbageToken(t *testing.T) {
	// Arrange
	_, val := newTestPair(t, time.Hour)

	// Act
	_, err := val.ValidateToken("not.a.token")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestUserContext_RoundTrip(t *testing.T) {
	// Arrange
	user := &UserContext{UserID: "user-1", Email: "dev@example.com", Roles: []string{"authenticated"}}

	// Act
	ctx := SetUserInContext(context.Background(), user)
	got, err := GetUserFromContext(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = GetUserFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoUserInContext)
}
