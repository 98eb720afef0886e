package middleware

import (
	"strings"

	"campushub/internal/config"
	"campushub/internal/core/domain"
	"campushub/internal/core/services"
	"campushub/internal/pkg/jwt"
	"campushub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maintenanceAllowPrefixes are the paths that stay reachable while the
// maintenance flag is set: login, config administration, logs, backups,
// API docs and the error endpoint.
var maintenanceAllowPrefixes = []string{
	"/api/v1/auth/login",
	"/api/v1/admin/configs",
	"/api/v1/admin/logs",
	"/api/v1/admin/backup",
	"/swagger",
	"/error",
}

// MaintenanceGate is the first stage of the admission pipeline. When the
// maintenance flag is off it does nothing. When on, allow-listed paths pass
// unconditionally; otherwise only Organizer and Admin callers get through.
// The role comes from a lightweight credential decode of its own. A decode
// failure means "not privileged", not an authentication error, so ordinary
// callers see the maintenance refusal rather than a 401.
func MaintenanceGate(configService *services.ConfigService, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !configService.MaintenanceMode(c.Context()) {
			return c.Next()
		}

		path := c.Path()
		for _, prefix := range maintenanceAllowPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		if token := bearerToken(c); token != "" {
			if level, err := jwt.RoleLevelFromToken(token, cfg.JWT.Secret); err == nil {
				if domain.HasPermission(domain.RoleFromLevel(level), domain.RoleAdmin) {
					return c.Next()
				}
			}
		}

		return response.Refuse(c, domain.CodeServiceUnderMaintenance,
			"Service is under maintenance, please try again later")
	}
}
