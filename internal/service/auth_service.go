package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrSessionRevoked     = errors.New("session revoked or expired")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	AccountID   int    `json:"account_id"`
	AccountName string `json:"account_name"`
}

// AuthService authenticates service accounts and issues JWTs. Each token is
// backed by a Redis session keyed on its JTI so tokens can be revoked
// before they expire.
type AuthService struct {
	cfg         *config.Config
	accountRepo *repository.ServiceAccountRepository
	rdb         *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, accountRepo *repository.ServiceAccountRepository, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, accountRepo: accountRepo, rdb: rdb}
}

// HashSecret hashes an account secret with the configured bcrypt cost.
func (s *AuthService) HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cfg.BcryptCost)
	return string(hash), err
}

// Login verifies the account secret and returns a signed token.
func (s *AuthService) Login(ctx context.Context, name, secret string) (string, error) {
	account, err := s.accountRepo.GetByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("load account: %w", err)
	}
	if account == nil {
		// Burn a comparison anyway so unknown names cost the same as wrong
		// secrets.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$06$invalidinvalidinvalidinvalid"), []byte(secret))
		return "", ErrInvalidCredentials
	}
	if account.Disabled {
		return "", ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.SecretHash), []byte(secret)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, claims, err := s.GenerateToken(account)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, config.CacheKey.SessionKey(claims.ID), account.ID, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Logout revokes the session backing a token. The token itself stays
// syntactically valid but fails validation afterwards.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return err
	}
	return s.rdb.Del(ctx, config.CacheKey.SessionKey(claims.ID)).Err()
}

// GenerateToken creates a JWT for a service account.
func (s *AuthService) GenerateToken(account *model.ServiceAccount) (string, *Claims, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		AccountID:   account.ID,
		AccountName: account.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

// ValidateToken parses a JWT, verifies the signature and checks that its
// session is still live.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return nil, err
	}

	exists, err := s.rdb.Exists(ctx, config.CacheKey.SessionKey(claims.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (s *AuthService) parseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
