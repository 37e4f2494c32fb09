package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "tutor-auth"})
	token, err := svc.IssueToken(&models.JWTClaims{
		UserID: "u-1",
		Role:   models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tutor-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestTokenServiceRejectsForeignTokens(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "tutor-auth"})

	other := NewTokenService(TokenConfig{Secret: "other"})
	forged, err := other.IssueToken(&models.JWTClaims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "tutor-auth"}})
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	wrongIssuer, err := NewTokenService(TokenConfig{Secret: "s3cret"}).IssueToken(&models.JWTClaims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "elsewhere"}})
	require.NoError(t, err)
	_, err = svc.ValidateToken(wrongIssuer)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	expired, err := svc.IssueToken(&models.JWTClaims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{
		Issuer: "tutor-auth", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	anonymous, err := svc.IssueToken(&models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "tutor-auth"}})
	require.NoError(t, err)
	_, err = svc.ValidateToken(anonymous)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
