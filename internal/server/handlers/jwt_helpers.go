package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is written to the iss claim of every access token
const Issuer = "wastetrack"

// AccessClaims are the claims of a wastetrack access token.
// The user id travels in the standard sub claim.
type AccessClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token
func (c *AccessClaims) UserID() string {
	return c.Subject
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func (cfg JWTConfig) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
}

var errInvalidToken = errors.New("invalid token")

// GenerateAccessToken подписывает access token и возвращает его срок жизни в секундах
func GenerateAccessToken(cfg JWTConfig, userID, username string) (string, int64, error) {
	now := time.Now()

	claims := AccessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int64(cfg.AccessTokenTTL / time.Second), nil
}

// ValidateAccessToken проверяет подпись, издателя и срок действия токена
func ValidateAccessToken(cfg JWTConfig, tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := cfg.parser().ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken создает непрозрачный refresh token и его срок действия
func GenerateRefreshToken(cfg JWTConfig) (string, time.Time) {
	return rand.Text(), time.Now().Add(cfg.RefreshTokenTTL)
}
