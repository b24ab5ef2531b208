// Package auth выпускает и проверяет JWT-токены пользователя.
package auth

import (
	"errors"
	"fmt"
	"time"

	"user-account-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var errEmptySecret = errors.New("signing key is empty")

// Claims содержит стандартные утверждения и тип токена.
// Идентификатор пользователя хранится в Subject.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// JWTIssuer реализует domain.TokenIssuer с подписью HS256.
type JWTIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTIssuer(secret string, accessTTL, refreshTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue выпускает пару access/refresh токенов.
func (i *JWTIssuer) Issue(userOID uuid.UUID) (domain.Tokens, error) {
	now := i.now()

	access, accessExp, err := i.sign(userOID, TokenTypeAccess, now, i.accessTTL)
	if err != nil {
		return domain.Tokens{}, err
	}

	refresh, refreshExp, err := i.sign(userOID, TokenTypeRefresh, now, i.refreshTTL)
	if err != nil {
		return domain.Tokens{}, err
	}

	return domain.Tokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyRefresh проверяет refresh-токен и возвращает идентификатор пользователя.
func (i *JWTIssuer) VerifyRefresh(tokenString string) (uuid.UUID, error) {
	return i.parse(tokenString, TokenTypeRefresh)
}

// parse проверяет подпись, срок действия и тип токена.
func (i *JWTIssuer) parse(tokenString, tokenType string) (uuid.UUID, error) {
	if len(i.secret) == 0 {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, errEmptySecret)
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	if !token.Valid || claims.TokenType != tokenType {
		return uuid.Nil, domain.ErrInvalidToken
	}

	oid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject: %w", domain.ErrInvalidToken, err)
	}

	return oid, nil
}

func (i *JWTIssuer) sign(userOID uuid.UUID, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: %w", domain.ErrTokenIssue, errEmptySecret)
	}

	exp := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userOID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		TokenType: tokenType,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", domain.ErrTokenIssue, err)
	}

	return signed, exp, nil
}
