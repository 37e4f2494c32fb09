package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
)

// TokenCmd mints an access token for local testing against the API.
type TokenCmd struct {
	UserID string        `arg:"" help:"Subject user id."`
	Role   string        `help:"SUPERADMIN, ADMIN, STAFF or TEACHER." default:"ADMIN" enum:"SUPERADMIN,ADMIN,STAFF,TEACHER"`
	Secret string        `help:"HMAC secret." env:"JWT_SECRET" default:"dev_secret"`
	Issuer string        `help:"Token issuer." env:"JWT_ISSUER"`
	TTL    time.Duration `help:"Token lifetime." default:"1h"`
}

func (c *TokenCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	tokens := service.NewTokenService(service.TokenConfig{Secret: c.Secret, Issuer: c.Issuer})
	signed, err := tokens.IssueToken(&models.JWTClaims{
		UserID: c.UserID,
		Role:   models.UserRole(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL)),
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, signed)
	return nil
}
