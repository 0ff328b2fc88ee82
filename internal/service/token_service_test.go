package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(role models.UserRole, expiresIn time.Duration) models.JWTClaims {
	return models.JWTClaims{
		UserID:   "user-1",
		Role:     role,
		SchoolID: "school-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestTokenServiceValidate(t *testing.T) {
	svc := NewTokenService("secret")
	claims, err := svc.ValidateToken(signToken(t, "secret", jwt.SigningMethodHS256, validClaims(models.RoleAdmin, time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "school-1", claims.SchoolID)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService("secret")

	cases := map[string]string{
		"wrong secret": signToken(t, "other", jwt.SigningMethodHS256, validClaims(models.RoleAdmin, time.Hour)),
		"wrong alg":    signToken(t, "secret", jwt.SigningMethodHS384, validClaims(models.RoleAdmin, time.Hour)),
		"expired":      signToken(t, "secret", jwt.SigningMethodHS256, validClaims(models.RoleAdmin, -time.Hour)),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}

func TestTokenServiceUnknownRole(t *testing.T) {
	svc := NewTokenService("secret")
	_, err := svc.ValidateToken(signToken(t, "secret", jwt.SigningMethodHS256, validClaims("STUDENT", time.Hour)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
