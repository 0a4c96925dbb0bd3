package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogModel mirrors the 'audit_logs' table. Rows are append-only;
// no code path updates them after creation.
type AuditLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Action     string    `gorm:"type:varchar(100);not null;index"`
	EntityType string    `gorm:"type:varchar(100);not null;index:idx_audit_entity"`
	EntityID   string    `gorm:"type:varchar(64);not null;index:idx_audit_entity"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OldValue   *string   `gorm:"type:text"`
	NewValue   *string   `gorm:"type:text"`
	IPAddress  *string   `gorm:"type:varchar(45)"`
	UserAgent  *string   `gorm:"type:varchar(512)"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// BeforeCreate assigns the UUID in the application rather than the database.
func (l *AuditLogModel) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	return nil
}

// AutoMigrate creates or updates the schema for every model. Used by the
// development bootstrap and by repository tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&RoleModel{},
		&UserModel{},
		&SessionModel{},
		&RefreshTokenModel{},
		&PasswordResetTokenModel{},
		&AuditLogModel{},
	)
}
