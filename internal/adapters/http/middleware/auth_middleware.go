package middleware

import (
	"strings"

	"campushub/internal/config"
	"campushub/internal/core/domain"
	"campushub/internal/pkg/jwt"
	"campushub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// bearerToken extracts the bearer credential from the access_token cookie
// or the Authorization header
func bearerToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// RequireAuth is the authentication-presence stage of the admission
// pipeline: it resolves the bearer credential into a principal and refuses
// requests without a valid one. Accounts that are not active are refused
// regardless of role.
func RequireAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Refuse(c, domain.CodeAuthenticationRequired, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Refuse(c, domain.CodeAuthenticationRequired, "Access token expired")
			}
			return response.Refuse(c, domain.CodeAuthenticationRequired, "Invalid access token")
		}

		principal := &domain.Principal{
			UserID:    claims.UserID,
			StudentNo: claims.StudentNo,
			Username:  claims.Username,
			Role:      domain.RoleFromLevel(claims.RoleLevel),
			Status:    domain.AccountStatus(claims.Status),
		}

		if !principal.Status.IsActive() {
			return response.Refuse(c, domain.CodeAccountNotActive, "Account is disabled or not activated")
		}

		c.Locals(principalKey, principal)

		return c.Next()
	}
}

// RequireRole is the role-sufficiency stage: the route group's declared
// minimum role checked against the authenticated principal. Must run after
// RequireAuth; a missing principal fails closed as unauthenticated.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return response.Refuse(c, domain.CodeAuthenticationRequired, "Access token required")
		}

		if !domain.HasPermission(principal.Role, required) {
			return response.Refuse(c, domain.CodeInsufficientRole,
				"Requires "+required.Label()+" role or higher")
		}

		return c.Next()
	}
}

// PrincipalFromCtx returns the principal stored by RequireAuth
func PrincipalFromCtx(c *fiber.Ctx) (*domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*domain.Principal)
	return principal, ok
}
