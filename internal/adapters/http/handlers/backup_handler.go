package handlers

import (
	"time"

	"campushub/internal/core/services"
	"campushub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BackupHandler exports a portable snapshot of the portal's account and
// config data. Organizer-only, and allow-listed under maintenance so a
// snapshot can be taken while the portal is closed.
type BackupHandler struct {
	userService   *services.UserService
	configService *services.ConfigService
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(userService *services.UserService, configService *services.ConfigService) *BackupHandler {
	return &BackupHandler{
		userService:   userService,
		configService: configService,
	}
}

// Export returns a JSON snapshot of all accounts (without credentials) and
// the runtime flags
// @Summary Export data snapshot
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/backup [get]
func (h *BackupHandler) Export(c *fiber.Ctx) error {
	// Negative limit disables pagination for the full export
	users, err := h.userService.ListUsers(c.Context(), 0, -1)
	if err != nil {
		return response.InternalServerError(c, "Failed to export users")
	}

	return response.Success(c, "", fiber.Map{
		"generated_at": time.Now().UTC(),
		"user_count":   users.Total,
		"users":        users.Users,
		"configs":      h.configService.All(c.Context()),
	})
}
