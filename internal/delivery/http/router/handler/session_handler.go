package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"idhub/internal/delivery/http/response"
	"idhub/internal/domain/entity"
	"idhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SessionHandler exposes the caller's credential lifecycle and the
// maintenance sweep.
type SessionHandler struct {
	uc     usecase.CredentialUsecase
	logger *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(uc usecase.CredentialUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		uc:     uc,
		logger: logger,
	}
}

// ListSessions returns the caller's sessions, newest first. With
// ?activeOnly=true only currently usable sessions are returned.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	activeOnly := false
	if raw := c.QueryParam("activeOnly"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid activeOnly value")
		}
		activeOnly = parsed
	}

	sessions, err := h.uc.ListForUser(c.Request().Context(), entity.KindSession, userID, activeOnly)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sessions, "")
}

// CountActiveSessions reports how many usable sessions the caller has.
func (h *SessionHandler) CountActiveSessions(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	count, err := h.uc.CountActive(c.Request().Context(), entity.KindSession, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"active": count}, "")
}

type touchSessionRequest struct {
	SessionToken string `json:"sessionToken" validate:"required"`
}

// TouchSession refreshes a session's last-activity timestamp.
func (h *SessionHandler) TouchSession(c echo.Context) error {
	var req touchSessionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid touch input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.TouchSession(c.Request().Context(), req.SessionToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Session activity recorded")
}

// Sweep deletes expired credentials of every kind and retired rows of the
// flag-bearing kinds.
func (h *SessionHandler) Sweep(c echo.Context) error {
	report, err := h.uc.Sweep(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, report, "Sweep completed")
}
