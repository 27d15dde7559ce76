package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("superadminpassword")
	require.NoError(t, err)
	assert.NotEqual(t, "superadminpassword", hash)

	assert.True(t, CheckPasswordHash("superadminpassword", hash))
	assert.False(t, CheckPasswordHash("wrongpassword", hash))
}

func TestGenerateJWTRoundtrip(t *testing.T) {
	tokenString, err := GenerateJWT("manager@example.com", "manager", "OFF-1", "EMP-1")
	require.NoError(t, err)

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtSecret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "manager@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "OFF-1", claims.OfficeID)
	assert.Equal(t, "EMP-1", claims.EmployeeID)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestGenerateJWTRejectsWrongSecret(t *testing.T) {
	tokenString, err := GenerateJWT("manager@example.com", "manager", "OFF-1", "")
	require.NoError(t, err)

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("someothersecret"), nil
	})
	require.Error(t, err)
	if token != nil {
		assert.False(t, token.Valid)
	}
}
