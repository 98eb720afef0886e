package handlers

import (
	"errors"

	"campushub/internal/adapters/http/middleware"
	"campushub/internal/core/domain"
	"campushub/internal/core/services"
	"campushub/internal/pkg/pagination"
	"campushub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SetStatusRequest represents admin status-change request body
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetRoleRequest represents organizer role-change request body
type SetRoleRequest struct {
	RoleLevel int `json:"role_level"`
}

// Me returns the authenticated user's profile
// @Summary Get own profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Response
// @Router /users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, "", user)
}

// ChangePassword changes the authenticated user's password
// @Summary Change own password
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.ChangePasswordInput true "Passwords"
// @Success 200 {object} response.Response
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(input.NewPassword) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	if err := h.userService.ChangePassword(c.Context(), principal.UserID, &input); err != nil {
		switch {
		case errors.Is(err, services.ErrOldPasswordWrong):
			return response.BadRequest(c, "Old password is incorrect")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Success(c, "Password changed", nil)
}

// List lists users with pagination (admin)
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.userService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "", fiber.Map{
		"users": result.Users,
		"meta":  pagination.GetMeta(params, result.Total),
	})
}

// SetStatus enables or disables an account (admin)
// @Summary Set account status
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body SetStatusRequest true "Target status"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/status [put]
func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	status := domain.AccountStatus(req.Status)
	if status != domain.StatusActive && status != domain.StatusDisabled {
		return response.BadRequest(c, "Status must be ACTIVE or DISABLED")
	}

	if err := h.userService.SetUserStatus(c.Context(), principal.UserID, uint(targetID), status); err != nil {
		switch {
		case errors.Is(err, services.ErrCannotDisableSelf):
			return response.BadRequest(c, "Cannot disable your own account")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to update status")
		}
	}

	return response.Success(c, "Status updated", nil)
}

// SetRole changes a user's role (organizer)
// @Summary Set user role
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "Target role level"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/role [put]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RoleLevel < 1 || req.RoleLevel > 3 {
		return response.BadRequest(c, "Role level must be 1 (organizer), 2 (admin) or 3 (user)")
	}

	role := domain.RoleFromLevel(req.RoleLevel)

	if err := h.userService.SetUserRole(c.Context(), principal.UserID, uint(targetID), role); err != nil {
		switch {
		case errors.Is(err, services.ErrCannotChangeOwnRole):
			return response.BadRequest(c, "Cannot change your own role")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to update role")
		}
	}

	return response.Success(c, "Role updated", nil)
}
