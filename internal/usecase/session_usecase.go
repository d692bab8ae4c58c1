package usecase

import (
	"context"

	"cliptube/internal/domain/entity"

	"github.com/google/uuid"
)

// LoginInput defines the credentials for a login attempt. Identifier matches
// either the username or the email of an account.
type LoginInput struct {
	Identifier string
	Password   string
}

// ChangePasswordInput defines the data for a password change.
type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// TokenPair bundles a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionOutput returns the issued tokens together with the sanitized account.
type SessionOutput struct {
	Tokens  TokenPair
	Account *entity.AccountView
}

// SessionUsecase defines the interface for the session lifecycle:
// login, logout, refresh rotation and password change.
type SessionUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*SessionOutput, error)
	Logout(ctx context.Context, accountID uuid.UUID) error
	Refresh(ctx context.Context, presentedToken string) (*SessionOutput, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, input *ChangePasswordInput) error
}
