package repository

import (
	"context"

	"idhub/internal/domain/entity"
)

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back. Otherwise, it's committed.
	// All repository operations within the function will use the same database transaction.
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to one specific
// transaction, so every operation inside an Execute callback shares the
// same database connection.
type RepositoryFactory interface {
	// Users returns a UserRepository bound to the current transaction.
	Users() UserRepository

	// Roles returns a RoleRepository bound to the current transaction.
	Roles() RoleRepository

	// Credentials returns the CredentialRepository for the given kind,
	// bound to the current transaction.
	Credentials(kind entity.CredentialKind) CredentialRepository

	// AuditLogs returns an AuditLogRepository bound to the current transaction.
	AuditLogs() AuditLogRepository
}
