// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"cliptube/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAccountNotFound is a domain-specific error returned when an account is not found.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
// The application layer will depend on this interface, not the concrete implementation.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByIdentifier retrieves a single account whose username OR email
	// equals the given (already normalized) identifier.
	FindByIdentifier(ctx context.Context, identifier string) (*entity.Account, error)

	// ExistsByUsernameOrEmail reports whether any account already holds the
	// given username or email. Used for the pre-registration conflict check.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Create persists a new account entity to the storage.
	Create(ctx context.Context, account *entity.Account) error

	// Update modifies an existing account entity in the storage.
	Update(ctx context.Context, account *entity.Account) error

	// UpdateRefreshToken sets (or clears, with nil) the stored refresh token
	// without touching any other column.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
}
