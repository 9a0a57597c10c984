package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and decodes bearer tokens whose subject is the user id.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg config.Auth) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: unsupported algorithm %q", cfg.Algorithm)
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}, nil
}

func (s *TokenService) Issue(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Subject validates signature, algorithm and expiry, and returns the user id. Any failure
// reports false.
func (s *TokenService) Subject(token string) (uint, bool) {
	if token == "" {
		return 0, false
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return 0, false
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 || uint64(uint(id)) != id {
		return 0, false
	}
	return uint(id), true
}
