// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"cliptube/internal/domain/entity"
	"cliptube/internal/domain/service"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
// The avatar file is mandatory, the cover image is optional.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *service.MediaUpload
	CoverImage *service.MediaUpload
}

// UpdateDetailsInput defines the mutable account detail fields.
// Empty fields are left untouched.
type UpdateDetailsInput struct {
	FullName string
	Email    string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's sanitized view.
type RegisterOutput struct {
	Account *entity.AccountView
}

// AccountUsecase defines the interface for account-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*entity.AccountView, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, input *UpdateDetailsInput) (*entity.AccountView, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, upload *service.MediaUpload) (*entity.AccountView, error)
	UpdateCoverImage(ctx context.Context, id uuid.UUID, upload *service.MediaUpload) (*entity.AccountView, error)
	ProfileQR(ctx context.Context, id uuid.UUID) ([]byte, error)
}
