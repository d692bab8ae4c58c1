// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is the core entity in the system, representing a registered user.
// Username and Email are stored lowercased and trimmed so either can serve
// as a login identifier without case ambiguity.
type Account struct {
	ID            uuid.UUID // The Global Unique Identifier for the account.
	Username      string    // Unique handle, lowercased and trimmed.
	Email         string    // Unique contact email, lowercased and trimmed.
	FullName      string    // The account holder's display name.
	PasswordHash  string    // The bcrypt hash of the account password. Never exposed.
	AvatarURL     string    // Public URL of the avatar image on the media host.
	CoverImageURL string    // Public URL of the cover image. Optional.
	RefreshToken  *string   // The currently valid refresh token, nil when logged out.
	CreatedAt     time.Time // Timestamp of when this account was created.
	UpdatedAt     time.Time // Timestamp of the last modification to this account.
}

// NormalizeIdentifier lowercases and trims a username or email so lookups
// and stored values agree.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AccountView is the sanitized projection of an Account that is safe to
// return to clients. It carries neither the password hash nor the refresh token.
type AccountView struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Sanitized returns the client-safe view of the account.
func (a *Account) Sanitized() *AccountView {
	if a == nil {
		return nil
	}

	return &AccountView{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
