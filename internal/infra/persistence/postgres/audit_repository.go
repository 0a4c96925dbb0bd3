package postgres

import (
	"context"
	"time"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/domain/repository"
	"idhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository is the constructor for auditLogRepository.
func NewAuditLogRepository(db *gorm.DB) repository.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create appends a new audit record.
func (repo *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	m := fromAuditLogDomain(log)

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to append audit log")
	}

	log.ID = m.ID
	log.CreatedAt = m.CreatedAt

	return nil
}

// List returns the filtered page of entries, newest first, plus the
// total match count.
func (repo *auditLogRepository) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditLog, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.AuditLogModel{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	var models []model.AuditLogModel
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	logs := make([]*entity.AuditLog, 0, len(models))
	for i := range models {
		logs = append(logs, toAuditLogDomain(&models[i]))
	}

	return logs, total, nil
}

type auditGroupCount struct {
	Key   string
	Count int64
}

// Statistics aggregates the append log with grouped counts.
func (repo *auditLogRepository) Statistics(ctx context.Context, now time.Time) (*entity.AuditStatistics, error) {
	stats := &entity.AuditStatistics{
		ByAction:     make(map[string]int64),
		ByEntityType: make(map[string]int64),
	}

	base := repo.db.WithContext(ctx).Model(&model.AuditLogModel{})

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	var byAction []auditGroupCount
	err := base.Session(&gorm.Session{}).
		Select("action AS key, COUNT(*) AS count").
		Group("action").
		Scan(&byAction).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, row := range byAction {
		stats.ByAction[row.Key] = row.Count
	}

	var byEntityType []auditGroupCount
	err = base.Session(&gorm.Session{}).
		Select("entity_type AS key, COUNT(*) AS count").
		Group("entity_type").
		Scan(&byEntityType).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, row := range byEntityType {
		stats.ByEntityType[row.Key] = row.Count
	}

	err = base.Session(&gorm.Session{}).
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Count(&stats.Last24Hours).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}

// DeleteOlderThan removes entries created before the cutoff.
func (repo *auditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.AuditLogModel{})
	if res.Error != nil {
		return 0, errors.WithStack(res.Error)
	}

	return res.RowsAffected, nil
}

// DeleteAllForUser removes every entry recorded for the user.
func (repo *auditLogRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.AuditLogModel{})
	if res.Error != nil {
		return 0, errors.WithStack(res.Error)
	}

	return res.RowsAffected, nil
}

// --- Mapper Functions ---

func toAuditLogDomain(data *model.AuditLogModel) *entity.AuditLog {
	if data == nil {
		return nil
	}

	return &entity.AuditLog{
		ID:         data.ID,
		Action:     data.Action,
		EntityType: data.EntityType,
		EntityID:   data.EntityID,
		UserID:     data.UserID,
		OldValue:   data.OldValue,
		NewValue:   data.NewValue,
		IPAddress:  data.IPAddress,
		UserAgent:  data.UserAgent,
		CreatedAt:  data.CreatedAt,
	}
}

func fromAuditLogDomain(data *entity.AuditLog) *model.AuditLogModel {
	if data == nil {
		return nil
	}

	return &model.AuditLogModel{
		ID:         data.ID,
		Action:     data.Action,
		EntityType: data.EntityType,
		EntityID:   data.EntityID,
		UserID:     data.UserID,
		OldValue:   data.OldValue,
		NewValue:   data.NewValue,
		IPAddress:  data.IPAddress,
		UserAgent:  data.UserAgent,
		CreatedAt:  data.CreatedAt,
	}
}
