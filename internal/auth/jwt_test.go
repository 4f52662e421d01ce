package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()
	claims := &Claims{
		UserID:   userID,
		TenantID: tenantID,
		Email:    "groomer@example.com",
		Roles:    []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	svc := NewJWTService("test-secret")
	parsed, err := svc.ValidateToken(signTestToken(t, "test-secret", claims))
	require.NoError(t, err)
	assert.Equal(t, userID, parsed.UserID)
	assert.Equal(t, tenantID, parsed.TenantID)
	assert.Equal(t, "groomer@example.com", parsed.Email)
	assert.True(t, parsed.HasRole("admin"))
	assert.False(t, parsed.HasRole("super_admin"))
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	claims := &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	svc := NewJWTService("test-secret")
	_, err := svc.ValidateToken(signTestToken(t, "other-secret", claims))
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	claims := &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}

	svc := NewJWTService("test-secret")
	_, err := svc.ValidateToken(signTestToken(t, "test-secret", claims))
	assert.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("barksworth")
	require.NoError(t, err)
	require.NotEqual(t, "barksworth", hash)

	assert.True(t, CheckPassword("barksworth", hash))
	assert.False(t, CheckPassword("meowsworth", hash))
}
