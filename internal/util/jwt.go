package util

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// MsgInvalidCredentials is the single message for every token failure, so
// callers cannot tell an expired token from a forged one.
const MsgInvalidCredentials = "Could not validate credentials"

// TokenService issues and resolves HS256 bearer tokens whose subject is the
// user's email.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds a token service. ttl defaults to 24 hours.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock replaces the clock, for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// TTL is the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject.
func (s *TokenService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies a token and returns its subject. Every failure is an
// authentication error carrying the same public message; the reason is
// kept as the cause for logging.
func (s *TokenService) Resolve(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuthentication, MsgInvalidCredentials, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", apperr.Wrap(apperr.KindAuthentication, MsgInvalidCredentials, jwt.ErrTokenInvalidClaims)
	}
	return claims.Subject, nil
}
