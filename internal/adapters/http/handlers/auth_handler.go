package handlers

import (
	"errors"
	"strings"

	"campushub/internal/config"
	"campushub/internal/core/domain"
	"campushub/internal/core/services"
	"campushub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	StudentNo string `json:"student_no"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ActivateRequest represents code-based activation request body
type ActivateRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailRequest represents a body carrying only an email
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password-reset confirmation body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// RefreshRequest represents refresh token request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles user registration
// @Summary Register new user
// @Description Create an unactivated account and send activation material
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.StudentNo == "" {
		return response.BadRequest(c, "Student number is required")
	}
	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if len(req.Password) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	input := &services.RegisterInput{
		StudentNo: strings.TrimSpace(req.StudentNo),
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
	}

	user, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRegistrationClosed):
			return response.Forbidden(c, "Registration is currently closed")
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Student number, username or email already registered")
		default:
			return response.InternalServerError(c, "Failed to register")
		}
	}

	return response.Created(c, "Registered, check your email to activate the account", user)
}

// Activate handles code-based account activation
// @Summary Activate account by code
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ActivateRequest true "Activation data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.RefusalResponse
// @Router /auth/activate [post]
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	var req ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Code == "" {
		return response.BadRequest(c, "Email and code are required")
	}

	err := h.authService.Activate(c.Context(), strings.TrimSpace(req.Email), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCode):
			return response.Refuse(c, domain.CodeInvalidOrExpiredCode, "Invalid or expired activation code")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to activate account")
		}
	}

	return response.Success(c, "Account activated", nil)
}

// ActivateByLink handles link-based account activation
// @Summary Activate account by emailed link token
// @Tags Auth
// @Produce json
// @Param token path string true "Activation token"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.RefusalResponse
// @Router /auth/activate/link/{token} [get]
func (h *AuthHandler) ActivateByLink(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return response.BadRequest(c, "Activation token is required")
	}

	err := h.authService.ActivateByLink(c.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			return response.RefuseWith(c, fiber.StatusNotFound,
				domain.CodeInvalidOrExpiredToken, "Invalid or expired activation link")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to activate account")
		}
	}

	return response.Success(c, "Account activated", nil)
}

// ResendActivation re-sends activation material
// @Summary Resend activation code and link
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body EmailRequest true "Email"
// @Success 200 {object} response.Response
// @Failure 429 {object} response.RefusalResponse
// @Router /auth/activate/resend [post]
func (h *AuthHandler) ResendActivation(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	err := h.authService.ResendActivation(c.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		var cooldown *services.CooldownError
		switch {
		case errors.As(err, &cooldown):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":           false,
				"error_code":        domain.CodeResendCooldownActive,
				"message":           "Please wait before requesting a new code",
				"path":              c.Path(),
				"seconds_remaining": cooldown.Seconds,
			})
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Account is already activated")
		default:
			return response.InternalServerError(c, "Failed to resend activation")
		}
	}

	return response.Success(c, "Activation material sent", nil)
}

// Login handles user login
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	result, err := h.authService.Login(c.Context(), &services.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrAccountUnactivated):
			return response.Forbidden(c, "Account is not activated yet")
		case errors.Is(err, services.ErrAccountDisabled):
			return response.Forbidden(c, "Account is disabled")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setTokenCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Logged in", result)
}

// Refresh handles access-token refresh with rotation
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.BodyParser(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token required")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			return response.Unauthorized(c, "Refresh token expired")
		case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrTokenRevoked):
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, services.ErrAccountDisabled):
			return response.Forbidden(c, "Account is disabled")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	h.setTokenCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Token refreshed", result)
}

// Logout revokes the refresh token and clears cookies
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.BodyParser(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	if refreshToken != "" {
		if err := h.authService.Logout(c.Context(), refreshToken); err != nil {
			return response.InternalServerError(c, "Failed to logout")
		}
	}

	h.clearTokenCookies(c)

	return response.Success(c, "Logged out", nil)
}

// RequestPasswordReset sends a reset code to the account email
// @Summary Request password reset
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body EmailRequest true "Email"
// @Success 200 {object} response.Response
// @Failure 429 {object} response.RefusalResponse
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	err := h.authService.RequestPasswordReset(c.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		var cooldown *services.CooldownError
		switch {
		case errors.As(err, &cooldown):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":           false,
				"error_code":        domain.CodeResendCooldownActive,
				"message":           "Please wait before requesting a new code",
				"path":              c.Path(),
				"seconds_remaining": cooldown.Seconds,
			})
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to send reset code")
		}
	}

	return response.Success(c, "Reset code sent", nil)
}

// ConfirmPasswordReset sets a new password after code verification
// @Summary Confirm password reset
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.RefusalResponse
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Code == "" {
		return response.BadRequest(c, "Email and code are required")
	}
	if len(req.NewPassword) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	err := h.authService.ResetPassword(c.Context(), strings.TrimSpace(req.Email), req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCode):
			return response.Refuse(c, domain.CodeInvalidOrExpiredCode, "Invalid or expired reset code")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Success(c, "Password reset, please log in again", nil)
}

// setTokenCookies stores the token pair in HTTP-only cookies
func (h *AuthHandler) setTokenCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   h.cfg.IsProd(),
		SameSite: "Lax",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   h.cfg.IsProd(),
		SameSite: "Lax",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
	})
}

// clearTokenCookies removes both token cookies
func (h *AuthHandler) clearTokenCookies(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", MaxAge: -1, HTTPOnly: true})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", MaxAge: -1, HTTPOnly: true})
}
