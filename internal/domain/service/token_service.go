package service

import (
	"errors"
	"time"

	"cliptube/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Verification failures. Callers that gate requests normalize all of these
// to an unauthorized response; they stay distinct for logging and tests.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")
)

// Claims defines the custom claims embedded in both token kinds.
type Claims struct {
	AccountID uuid.UUID `json:"accountId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Type      string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying JWTs.
// Verification is a pure claims check: it never consults the account store.
type TokenService interface {
	// IssueAccessToken creates a short-lived access token for the account.
	IssueAccessToken(account *entity.Account) (string, error)

	// IssueRefreshToken creates a long-lived refresh token for the account.
	IssueRefreshToken(account *entity.Account) (string, error)

	// VerifyAccessToken checks signature, expiry and token type against the access secret.
	VerifyAccessToken(tokenString string) (*Claims, error)

	// VerifyRefreshToken checks signature, expiry and token type against the refresh secret.
	VerifyRefreshToken(tokenString string) (*Claims, error)

	// AccessTokenDuration returns the configured lifetime for access tokens.
	AccessTokenDuration() time.Duration

	// RefreshTokenDuration returns the configured lifetime for refresh tokens.
	RefreshTokenDuration() time.Duration
}
