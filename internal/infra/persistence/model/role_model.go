package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleModel mirrors the 'roles' table. Permissions are stored as a
// JSON-encoded array in a text column; element order is preserved.
type RoleModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description *string   `gorm:"type:text"`
	Permissions string    `gorm:"type:text;not null;default:'[]'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Users []UserModel `gorm:"foreignKey:RoleID"`
}

// TableName explicitly sets the table name for GORM.
func (RoleModel) TableName() string {
	return "roles"
}

// BeforeCreate assigns the UUID in the application rather than the database.
func (r *RoleModel) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	return nil
}
