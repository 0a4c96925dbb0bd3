package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionModel mirrors the 'sessions' table. Sessions have no terminal
// flag; ending a session deletes the row.
type SessionModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	IPAddress      *string   `gorm:"type:varchar(45)"`
	UserAgent      *string   `gorm:"type:varchar(512)"`
	ExpiresAt      time.Time `gorm:"not null;index"`
	LastActivityAt time.Time `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// BeforeCreate assigns the UUID and seeds last activity at creation time.
func (s *SessionModel) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.LastActivityAt.IsZero() {
		s.LastActivityAt = time.Now()
	}

	return nil
}

// RefreshTokenModel mirrors the 'refresh_tokens' table. is_revoked is a
// one-way flag: it transitions false to true exactly once.
type RefreshTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	IsRevoked bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

// BeforeCreate assigns the UUID in the application rather than the database.
func (t *RefreshTokenModel) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	return nil
}

// PasswordResetTokenModel mirrors the 'password_reset_tokens' table.
// is_used is a one-way flag marking the single permitted consumption.
type PasswordResetTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	IsUsed    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}

// BeforeCreate assigns the UUID in the application rather than the database.
func (t *PasswordResetTokenModel) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	return nil
}
