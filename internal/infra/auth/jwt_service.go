// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cliptube/config"
	"cliptube/internal/domain/entity"
	"cliptube/internal/domain/service"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Access and refresh tokens are signed with distinct secrets so one kind can
// never be presented where the other is expected.
type jwtService struct {
	accessSecret  string        // Secret key for signing access tokens.
	refreshSecret string        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
}

// NewJWTService is the constructor for jwtService.
// Missing secrets are a fatal misconfiguration, reported immediately.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	accessTTL := cfg.SecretKey.AccessTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	refreshTTL := cfg.SecretKey.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}

	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccessToken creates a short-lived access token carrying the account's identity claims.
func (s *jwtService) IssueAccessToken(account *entity.Account) (string, error) {
	return s.issueToken(account, s.accessTTL, s.accessSecret, service.TokenTypeAccess)
}

// IssueRefreshToken creates a long-lived refresh token for the account.
func (s *jwtService) IssueRefreshToken(account *entity.Account) (string, error) {
	return s.issueToken(account, s.refreshTTL, s.refreshSecret, service.TokenTypeRefresh)
}

// VerifyAccessToken checks a token against the access secret.
func (s *jwtService) VerifyAccessToken(tokenString string) (*service.Claims, error) {
	return s.verifyToken(tokenString, s.accessSecret, service.TokenTypeAccess)
}

// VerifyRefreshToken checks a token against the refresh secret.
func (s *jwtService) VerifyRefreshToken(tokenString string) (*service.Claims, error) {
	return s.verifyToken(tokenString, s.refreshSecret, service.TokenTypeRefresh)
}

// AccessTokenDuration returns the configured lifetime for access tokens.
func (s *jwtService) AccessTokenDuration() time.Duration {
	return s.accessTTL
}

// RefreshTokenDuration returns the configured lifetime for refresh tokens.
func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

// issueToken is a private helper to create a JWT with specific claims.
func (s *jwtService) issueToken(account *entity.Account, ttl time.Duration, secret, tokenType string) (string, error) {
	now := time.Now()
	claims := &service.Claims{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		FullName:  account.FullName,
		Type:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			// iat/exp have second granularity, so the jti is what keeps two
			// tokens issued back to back from being byte-identical. Rotation
			// depends on every issued token being unique.
			ID:        uuid.New().String(),
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// verifyToken parses and validates a token string, mapping library failures
// onto the domain's sentinel errors.
func (s *jwtService) verifyToken(tokenString, secret, wantType string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, service.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, service.ErrTokenSignatureInvalid
		default:
			return nil, service.ErrTokenMalformed
		}
	}

	if !token.Valid || claims.Type != wantType {
		return nil, service.ErrTokenMalformed
	}

	return claims, nil
}
