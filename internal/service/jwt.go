package service

import (
	"errors"
	"fmt"
	"time"

	"luna/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 24 * time.Hour

var (
	ErrJWTNotInitialized = errors.New("jwt secret is not set")
	ErrInvalidToken      = errors.New("invalid token")
)

var jwtSecret []byte

func InitJWT(secret string) {
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtSecret = []byte(secret)
}

func GenerateJWT(userID domain.UserID, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrJWTNotInitialized
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates the token and returns its user. Ids are carried as strings
// since Discord snowflakes do not survive a float64 round trip.
func ParseJWT(tokenString string) (domain.UserID, error) {
	if len(jwtSecret) == 0 {
		return 0, ErrJWTNotInitialized
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, fmt.Errorf("%w: user_id not found", ErrInvalidToken)
	}
	id, err := domain.ParseUserID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return id, nil
}
