package handlers

import (
	"campushub/internal/core/services"
	"campushub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// allowedConfigKeys are the runtime flags admins may change through the API
var allowedConfigKeys = map[string]bool{
	services.KeyMaintenanceMode:  true,
	services.KeyOpenRegistration: true,
}

// ConfigHandler handles runtime-config admin endpoints. These routes stay
// reachable during maintenance so admins can turn the flag back off.
type ConfigHandler struct {
	configService *services.ConfigService
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(configService *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

// SetConfigRequest represents a flag update body
type SetConfigRequest struct {
	Value string `json:"value"`
}

// List returns all runtime flags
// @Summary List runtime config flags
// @Tags Config
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/configs [get]
func (h *ConfigHandler) List(c *fiber.Ctx) error {
	return response.Success(c, "", h.configService.All(c.Context()))
}

// Set updates a runtime flag
// @Summary Set a runtime config flag
// @Tags Config
// @Accept json
// @Produce json
// @Param key path string true "Flag key"
// @Param body body SetConfigRequest true "Flag value"
// @Success 200 {object} response.Response
// @Router /admin/configs/{key} [put]
func (h *ConfigHandler) Set(c *fiber.Ctx) error {
	key := c.Params("key")
	if !allowedConfigKeys[key] {
		return response.BadRequest(c, "Unknown config key")
	}

	var req SetConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Value != "true" && req.Value != "false" {
		return response.BadRequest(c, "Value must be 'true' or 'false'")
	}

	if err := h.configService.Set(c.Context(), key, req.Value); err != nil {
		return response.InternalServerError(c, "Failed to update config")
	}

	return response.Success(c, "Config updated", fiber.Map{key: req.Value})
}
