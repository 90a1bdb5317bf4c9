package services

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/collegecab/collegecab-backend/internal/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	accessExpiration  = 15 * time.Minute
	refreshExpiration = 24 * time.Hour
)

// TokenPair holds the session credentials returned after a verified
// registration or login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues and validates HS256-signed JWTs.
type TokenService struct {
	secret []byte
}

// NewTokenService reads the signing secret from JWT_SECRET. A fallback
// secret keeps local development working but is not for production.
func NewTokenService() *TokenService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("⚠️  JWT_SECRET not set - using insecure development secret")
		secret = "collegecab-dev-secret"
	}
	return &TokenService{secret: []byte(secret)}
}

func (t *TokenService) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"phone": user.PhoneNumber,
		"jti":   uuid.New().String(),
		"type":  tokenType,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// IssuePair returns fresh access and refresh tokens for the user.
func (t *TokenService) IssuePair(user *models.User) (*TokenPair, error) {
	access, err := t.sign(user, tokenTypeAccess, accessExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := t.sign(user, tokenTypeRefresh, refreshExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseAccess validates an access token and returns the user ID it was
// issued for.
func (t *TokenService) ParseAccess(tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	if claims["type"] != tokenTypeAccess {
		return 0, fmt.Errorf("not an access token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("missing subject claim")
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed subject claim: %w", err)
	}
	return uint(id), nil
}
