package middleware

import (
	"slices"
	"strings"

	"idhub/internal/delivery/http/response"
	"idhub/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Context keys set by the authentication middleware.
const (
	ContextKeyUserID      = "userID"
	ContextKeyEmail       = "email"
	ContextKeyPermissions = "permissions"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer access token and stores the caller's
// identity and permissions on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyPermissions, claims.Permissions)

		return next(c)
	}
}

// RequirePermission is a middleware factory that checks for a specific
// permission string. It must be used AFTER Authenticate.
func (m *AuthMiddleware) RequirePermission(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			permissions, ok := c.Get(ContextKeyPermissions).([]string)
			if !ok {
				return response.Forbidden(c, "FORBIDDEN", "Permission information missing")
			}

			if !slices.Contains(permissions, required) {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: require '"+required+"'")
			}

			return next(c)
		}
	}
}
