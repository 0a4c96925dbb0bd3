// Package model contains the GORM models mirroring the relational schema.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel mirrors the 'users' table. Deactivation is a soft delete via
// the is_active flag rather than GORM's DeletedAt, so inactive users stay
// resolvable by ID.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `gorm:"type:varchar(255);not null"`
	FirstName string    `gorm:"type:varchar(100);not null"`
	LastName  string    `gorm:"type:varchar(100);not null"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Phone     *string   `gorm:"type:varchar(50)"`
	Avatar    *string   `gorm:"type:varchar(255)"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Role                *RoleModel                `gorm:"foreignKey:RoleID"`
	Sessions            []SessionModel            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RefreshTokens       []RefreshTokenModel       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PasswordResetTokens []PasswordResetTokenModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate assigns the UUID in the application rather than the
// database so the models work on every supported backend.
func (u *UserModel) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	return nil
}
