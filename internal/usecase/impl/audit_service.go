package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "idhub/internal/delivery/context"
	"idhub/internal/domain/entity"
	"idhub/internal/domain/repository"
	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// auditService implements the AuditUsecase interface.
type auditService struct {
	auditRepo repository.AuditLogRepository
	logger    *slog.Logger
}

// AuditServiceParams holds dependencies for auditService, injected by Fx.
type AuditServiceParams struct {
	fx.In

	AuditRepo repository.AuditLogRepository
	Logger    *slog.Logger
}

// NewAuditService is the constructor for auditService.
func NewAuditService(params AuditServiceParams) usecase.AuditUsecase {
	return &auditService{
		auditRepo: params.AuditRepo,
		logger:    params.Logger,
	}
}

func (srv *auditService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Record appends an entry to the trail.
func (srv *auditService) Record(ctx context.Context, input usecase.RecordAuditInput) (*entity.AuditLog, error) {
	log := &entity.AuditLog{
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		UserID:     input.UserID,
		OldValue:   input.OldValue,
		NewValue:   input.NewValue,
	}
	if input.Meta != nil {
		if input.Meta.IPAddress != "" {
			log.IPAddress = &input.Meta.IPAddress
		}
		if input.Meta.UserAgent != "" {
			log.UserAgent = &input.Meta.UserAgent
		}
	}

	if err := srv.auditRepo.Create(ctx, log); err != nil {
		srv.log(ctx).Error("Failed to append audit entry", slog.String("action", input.Action), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to append audit entry")
	}

	return log, nil
}

// List returns a page of entries, newest first.
func (srv *auditService) List(ctx context.Context, input usecase.ListAuditInput) (*usecase.Page[*entity.AuditLog], error) {
	page, limit := usecase.NormalizePageInput(input.Page, input.Limit)

	logs, total, err := srv.auditRepo.List(ctx, repository.AuditFilter{
		Page:       page,
		Limit:      limit,
		UserID:     input.UserID,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Action:     input.Action,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit entries")
	}

	return usecase.NewPage(logs, page, limit, total), nil
}

// Statistics aggregates the trail as of now.
func (srv *auditService) Statistics(ctx context.Context) (*entity.AuditStatistics, error) {
	stats, err := srv.auditRepo.Statistics(ctx, time.Now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate audit statistics")
	}

	return stats, nil
}

// PurgeOlderThan removes entries created before the cutoff.
func (srv *auditService) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	removed, err := srv.auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge audit entries")
	}

	srv.log(ctx).Info("Purged audit entries", slog.Time("cutoff", cutoff), slog.Int64("removed", removed))

	return removed, nil
}

// PurgeForUser removes every entry recorded for the user.
func (srv *auditService) PurgeForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	removed, err := srv.auditRepo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge user audit entries")
	}

	srv.log(ctx).Info("Purged user audit entries", slog.Any("userID", userID), slog.Int64("removed", removed))

	return removed, nil
}
