package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"idhub/internal/delivery/http/response"
	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for the account directory endpoints.
type UserHandler struct {
	uc     usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: logger,
	}
}

type createUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	RoleID    string  `json:"roleId" validate:"required,uuid"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
}

// CreateUser handles the account creation request.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid role ID")
	}

	user, err := h.uc.CreateUser(c.Request().Context(), usecase.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    roleID,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
		ActorID:   actorID(c),
		Meta:      clientMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, user, "User created successfully")
}

// GetUser retrieves a single account by ID.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	user, err := h.uc.GetUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "")
}

// GetProfile returns the authenticated caller's own account.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	user, err := h.uc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "")
}

type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	RoleID    *string `json:"roleId" validate:"omitempty,uuid"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
}

// UpdateUser applies partial changes to an account.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := usecase.UpdateUserInput{
		ID:        id,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
		ActorID:   actorID(c),
		Meta:      clientMeta(c),
	}
	if req.RoleID != nil {
		roleID, err := uuid.Parse(*req.RoleID)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid role ID")
		}
		input.RoleID = &roleID
	}

	user, err := h.uc.UpdateUser(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "User updated successfully")
}

// DeactivateUser soft-deletes an account and retires its credentials.
func (h *UserHandler) DeactivateUser(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	if err := h.uc.DeactivateUser(c.Request().Context(), id, actorID(c), clientMeta(c)); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "User deactivated successfully")
}

// DeleteUser permanently removes an account.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	if err := h.uc.DeleteUser(c.Request().Context(), id, actorID(c), clientMeta(c)); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "User deleted successfully")
}

// ListUsers returns a filtered page of accounts.
func (h *UserHandler) ListUsers(c echo.Context) error {
	input := usecase.ListUsersInput{
		Search: c.QueryParam("search"),
	}

	if page := c.QueryParam("page"); page != "" {
		input.Page, _ = strconv.Atoi(page)
	}
	if limit := c.QueryParam("limit"); limit != "" {
		input.Limit, _ = strconv.Atoi(limit)
	}
	if isActive := c.QueryParam("isActive"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid isActive value")
		}
		input.IsActive = &active
	}
	if roleID := c.QueryParam("roleId"); roleID != "" {
		parsed, err := uuid.Parse(roleID)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid role ID")
		}
		input.RoleID = &parsed
	}

	page, err := h.uc.ListUsers(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, page, "")
}
