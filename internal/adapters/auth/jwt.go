// Package auth issues and verifies the signed tokens that carry a user identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

type claims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider is an HS256 auth provider. The subject holds the user id.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTProvider(secret string, ttl time.Duration) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("auth: empty secret")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &JWTProvider{secret: []byte(secret), ttl: ttl}, nil
}

func (p *JWTProvider) Issue(u domain.User) (string, error) {
	now := time.Now()
	c := claims{
		Name:   u.DisplayName,
		Avatar: u.AvatarRef,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
}

func (p *JWTProvider) ResolveSession(ctx context.Context, token string) (domain.User, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", core.ErrUnauthenticated, err)
	}
	if c.Subject == "" || c.Name == "" {
		return domain.User{}, fmt.Errorf("%w: incomplete identity", core.ErrUnauthenticated)
	}
	return domain.User{ID: domain.UserID(c.Subject), DisplayName: c.Name, AvatarRef: c.Avatar}, nil
}
