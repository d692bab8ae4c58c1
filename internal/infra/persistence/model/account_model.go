package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type AccountModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Username      string    `gorm:"type:varchar(100);unique;not null;index"`
	Email         string    `gorm:"type:varchar(255);unique;not null;index"`
	FullName      string    `gorm:"type:varchar(100);not null;index"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"`
	AvatarURL     string    `gorm:"type:text;not null"`
	CoverImageURL string    `gorm:"type:text"`
	RefreshToken  *string   `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
