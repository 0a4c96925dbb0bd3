// Package handler contains the HTTP handlers for the application.
package handler

import (
	"idhub/internal/delivery/http/middleware"
	"idhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// clientMeta captures the caller's client context for credential and
// audit records.
func clientMeta(c echo.Context) *entity.ClientMeta {
	return &entity.ClientMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// currentUserID reads the authenticated user's ID set by the auth
// middleware.
func currentUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)

	return userID, ok
}

// actorID returns the authenticated user's ID as an audit actor
// reference, or nil when the route is unauthenticated.
func actorID(c echo.Context) *uuid.UUID {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	return &userID
}

// pathUUID parses a UUID path parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
