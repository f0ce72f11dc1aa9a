// Package auth issues and verifies the JWTs that identify API callers.
package auth

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/user"
)

type Claims struct {
	Role user.Role `json:"rol"`
	jwt.RegisteredClaims
}

// Identity is the verified caller attached to request contexts.
type Identity struct {
	UserID uuid.UUID
	Role   user.Role
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *TokenManager) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	userID, err := uuid.FromString(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	return &Identity{UserID: userID, Role: claims.Role}, nil
}
