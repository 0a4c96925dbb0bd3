package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"idhub/internal/delivery/http/response"
	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuditHandler exposes the append-only audit trail.
type AuditHandler struct {
	uc     usecase.AuditUsecase
	logger *slog.Logger
}

// NewAuditHandler is the constructor for AuditHandler, injected by Fx.
func NewAuditHandler(uc usecase.AuditUsecase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		uc:     uc,
		logger: logger,
	}
}

// ListAuditLogs returns a filtered page of audit entries, newest first.
func (h *AuditHandler) ListAuditLogs(c echo.Context) error {
	input := usecase.ListAuditInput{
		EntityType: c.QueryParam("entityType"),
		EntityID:   c.QueryParam("entityId"),
		Action:     c.QueryParam("action"),
	}

	if page := c.QueryParam("page"); page != "" {
		input.Page, _ = strconv.Atoi(page)
	}
	if limit := c.QueryParam("limit"); limit != "" {
		input.Limit, _ = strconv.Atoi(limit)
	}
	if userID := c.QueryParam("userId"); userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid user ID")
		}
		input.UserID = &parsed
	}

	page, err := h.uc.List(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, page, "")
}

// GetStatistics aggregates the audit trail.
func (h *AuditHandler) GetStatistics(c echo.Context) error {
	stats, err := h.uc.Statistics(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "")
}

type purgeAuditRequest struct {
	Before time.Time `json:"before" validate:"required"`
}

// PurgeAuditLogs removes entries created before the given cutoff.
func (h *AuditHandler) PurgeAuditLogs(c echo.Context) error {
	var req purgeAuditRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid purge input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	purged, err := h.uc.PurgeOlderThan(c.Request().Context(), req.Before)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"purged": purged}, "Audit logs purged")
}

// PurgeUserAuditLogs removes every entry recorded for one user.
func (h *AuditHandler) PurgeUserAuditLogs(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	purged, err := h.uc.PurgeForUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"purged": purged}, "Audit logs purged")
}
