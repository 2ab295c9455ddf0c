// Package security provides JWT validation for the HTTP boundary.
package security

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	appctx "vendura/internal/core/context"
)

// Claims is the token payload the platform issues.
type Claims struct {
	jwt.RegisteredClaims

	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// JWTService validates bearer tokens.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a validator for HMAC-signed tokens.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// ValidateToken parses and verifies a token and returns the principal.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" || claims.TenantID == "" {
		return nil, fmt.Errorf("token missing identity claims")
	}

	return &appctx.UserContext{
		UserID:   claims.Subject,
		TenantID: claims.TenantID,
		Role:     claims.Role,
		FullName: claims.FullName,
	}, nil
}
