package response

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campushub/internal/core/domain"
)

func refusalFrom(t *testing.T, handler fiber.Handler) (*http.Response, RefusalResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/restricted", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/restricted", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var refusal RefusalResponse
	require.NoError(t, json.Unmarshal(body, &refusal))
	return resp, refusal
}

func TestRefuse_CarriesDomainRefusal(t *testing.T) {
	resp, refusal := refusalFrom(t, func(c *fiber.Ctx) error {
		return Refuse(c, domain.CodeInsufficientRole, "Requires ADMIN role or higher")
	})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "status comes from the code's mapping")
	assert.False(t, refusal.Success)
	assert.Equal(t, domain.CodeInsufficientRole, refusal.Code)
	assert.Equal(t, "Requires ADMIN role or higher", refusal.Message)
	assert.Equal(t, "/restricted", refusal.Path)
}

func TestRefuse_MaintenanceMapsTo503(t *testing.T) {
	resp, refusal := refusalFrom(t, func(c *fiber.Ctx) error {
		return Refuse(c, domain.CodeServiceUnderMaintenance, "Service is under maintenance")
	})

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, domain.CodeServiceUnderMaintenance, refusal.Code)
}

func TestRefuseWith_OverridesSuggestedStatus(t *testing.T) {
	resp, refusal := refusalFrom(t, func(c *fiber.Ctx) error {
		return RefuseWith(c, fiber.StatusNotFound,
			domain.CodeInvalidOrExpiredToken, "Invalid or expired activation link")
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.CodeInvalidOrExpiredToken, refusal.Code)
	assert.Equal(t, "/restricted", refusal.Path)
}
