// Package auth implements the admin-surface auth port with HS256 JWTs and a
// bcrypt-hashed rebuild token.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Ensure Adapter implements AuthAdapter
var _ driven.AuthAdapter = (*Adapter)(nil)

// jwtClaims wraps domain.TokenClaims for JWT compatibility
type jwtClaims struct {
	Subject string      `json:"sub_name"`
	Role    domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Adapter signs and validates admin tokens. The rebuild token may be
// configured as a bcrypt hash ($2a$... prefix) or as a plain value compared
// in constant time; when unset every rebuild request is rejected.
type Adapter struct {
	jwtSecret    []byte
	rebuildToken string
}

// NewAdapter creates a new auth adapter.
func NewAdapter(jwtSecret, rebuildToken string) *Adapter {
	return &Adapter{
		jwtSecret:    []byte(jwtSecret),
		rebuildToken: rebuildToken,
	}
}

// HashRebuildToken generates a bcrypt hash suitable for configuration.
func HashRebuildToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateToken creates a signed JWT from domain claims
func (a *Adapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	jc := jwtClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(a.jwtSecret)
}

// ParseToken validates a JWT and extracts domain claims
func (a *Adapter) ParseToken(tokenString string) (*domain.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	parsed := &domain.TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
	}
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return parsed, nil
}

// VerifyRebuildToken checks a caller-supplied rebuild token against the
// configured value. An unset configuration rejects everything.
func (a *Adapter) VerifyRebuildToken(token string) bool {
	if a.rebuildToken == "" || token == "" {
		return false
	}

	if isBcryptHash(a.rebuildToken) {
		return bcrypt.CompareHashAndPassword([]byte(a.rebuildToken), []byte(token)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(a.rebuildToken), []byte(token)) == 1
}

func isBcryptHash(value string) bool {
	return len(value) > 4 && value[0] == '$' && value[1] == '2'
}
