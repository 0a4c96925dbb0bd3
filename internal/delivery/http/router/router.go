// Package router contains the route table for the HTTP delivery.
package router

import (
	"idhub/internal/delivery/http/middleware"
	"idhub/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	RoleHandler    *handler.RoleHandler
	SessionHandler *handler.SessionHandler
	AuditHandler   *handler.AuditHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	roleHandler    *handler.RoleHandler
	sessionHandler *handler.SessionHandler
	auditHandler   *handler.AuditHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		roleHandler:    params.RoleHandler,
		sessionHandler: params.SessionHandler,
		auditHandler:   params.AuditHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword)
		authGroup.POST("/reset-password", r.authHandler.ResetPassword)

		authGroup.POST("/logout", r.authHandler.Logout, r.authMiddleware.Authenticate)
		authGroup.POST("/logout-all", r.authHandler.LogoutAll, r.authMiddleware.Authenticate)
		authGroup.POST("/change-password", r.authHandler.ChangePassword, r.authMiddleware.Authenticate)
	}

	// Account directory, permission-guarded per operation
	userGroup := e.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/me", r.userHandler.GetProfile)
		userGroup.GET("", r.userHandler.ListUsers, r.authMiddleware.RequirePermission("users.read"))
		userGroup.GET("/:id", r.userHandler.GetUser, r.authMiddleware.RequirePermission("users.read"))
		userGroup.POST("", r.userHandler.CreateUser, r.authMiddleware.RequirePermission("users.write"))
		userGroup.PATCH("/:id", r.userHandler.UpdateUser, r.authMiddleware.RequirePermission("users.write"))
		userGroup.POST("/:id/deactivate", r.userHandler.DeactivateUser, r.authMiddleware.RequirePermission("users.write"))
		userGroup.DELETE("/:id", r.userHandler.DeleteUser, r.authMiddleware.RequirePermission("users.delete"))
	}

	// Role directory
	roleGroup := e.Group("/roles")
	roleGroup.Use(r.authMiddleware.Authenticate)
	{
		roleGroup.GET("", r.roleHandler.ListRoles, r.authMiddleware.RequirePermission("roles.read"))
		roleGroup.GET("/:id", r.roleHandler.GetRole, r.authMiddleware.RequirePermission("roles.read"))
		roleGroup.POST("", r.roleHandler.CreateRole, r.authMiddleware.RequirePermission("roles.write"))
		roleGroup.PATCH("/:id", r.roleHandler.UpdateRole, r.authMiddleware.RequirePermission("roles.write"))
		roleGroup.DELETE("/:id", r.roleHandler.DeleteRole, r.authMiddleware.RequirePermission("roles.delete"))
	}

	// The caller's own sessions
	sessionGroup := e.Group("/sessions")
	sessionGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionGroup.GET("", r.sessionHandler.ListSessions)
		sessionGroup.GET("/count", r.sessionHandler.CountActiveSessions)
		sessionGroup.POST("/touch", r.sessionHandler.TouchSession)
	}

	// Audit trail
	auditGroup := e.Group("/audit")
	auditGroup.Use(r.authMiddleware.Authenticate)
	{
		auditGroup.GET("", r.auditHandler.ListAuditLogs, r.authMiddleware.RequirePermission("audit.read"))
		auditGroup.GET("/statistics", r.auditHandler.GetStatistics, r.authMiddleware.RequirePermission("audit.read"))
		auditGroup.POST("/purge", r.auditHandler.PurgeAuditLogs, r.authMiddleware.RequirePermission("audit.purge"))
		auditGroup.DELETE("/users/:id", r.auditHandler.PurgeUserAuditLogs, r.authMiddleware.RequirePermission("audit.purge"))
	}

	// Maintenance
	maintenanceGroup := e.Group("/maintenance")
	maintenanceGroup.Use(r.authMiddleware.Authenticate)
	{
		maintenanceGroup.POST("/sweep", r.sessionHandler.Sweep, r.authMiddleware.RequirePermission("maintenance.sweep"))
	}
}
