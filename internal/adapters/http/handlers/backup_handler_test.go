package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campushub/internal/adapters/persistence/models"
	"campushub/internal/core/domain"
	"campushub/internal/core/services"
)

// stubUserRepo serves a fixed user set; only listing matters here
type stubUserRepo struct {
	users []*models.User
}

func (r *stubUserRepo) Create(_ context.Context, _ *models.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, _ string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByStudentNo(_ context.Context, _ string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Update(_ context.Context, _ *models.User) error { return nil }
func (r *stubUserRepo) UpdateStatus(_ context.Context, _ uint, _ string) error { return nil }
func (r *stubUserRepo) UpdatePassword(_ context.Context, _ uint, _ string) error { return nil }

func (r *stubUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	return r.users, int64(len(r.users)), nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, _ string) (bool, error) { return false, nil }
func (r *stubUserRepo) ExistsByEmail(_ context.Context, _ string) (bool, error) { return false, nil }
func (r *stubUserRepo) ExistsByStudentNo(_ context.Context, _ string) (bool, error) { return false, nil }

// stubConfigRepo serves fixed runtime flags
type stubConfigRepo struct {
	values map[string]string
}

func (r *stubConfigRepo) Get(_ context.Context, key string) (string, error) {
	return r.values[key], nil
}

func (r *stubConfigRepo) Set(_ context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

func (r *stubConfigRepo) All(_ context.Context) ([]*models.SystemConfig, error) {
	configs := make([]*models.SystemConfig, 0, len(r.values))
	for k, v := range r.values {
		configs = append(configs, &models.SystemConfig{Key: k, Value: v})
	}
	return configs, nil
}

func TestBackupExport(t *testing.T) {
	userRepo := &stubUserRepo{users: []*models.User{
		{
			ID:        1,
			StudentNo: "ORG0001",
			Username:  "organizer",
			Email:     "organizer@campushub.edu",
			Password:  "$2a$12$secrethash",
			RoleLevel: domain.RoleOrganizer.Level(),
			Status:    string(domain.StatusActive),
		},
		{
			ID:        2,
			StudentNo: "S2024001",
			Username:  "alice",
			Email:     "alice@campushub.edu",
			Password:  "$2a$12$anotherhash",
			RoleLevel: domain.RoleUser.Level(),
			Status:    string(domain.StatusActive),
		},
	}}
	configRepo := &stubConfigRepo{values: map[string]string{
		services.KeyMaintenanceMode:  "true",
		services.KeyOpenRegistration: "false",
	}}

	h := NewBackupHandler(services.NewUserService(userRepo), services.NewConfigService(configRepo))

	app := fiber.New()
	app.Get("/api/v1/admin/backup", h.Export)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admin/backup", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "secrethash", "snapshot must not carry password hashes")

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			GeneratedAt string                   `json:"generated_at"`
			UserCount   int64                    `json:"user_count"`
			Users       []map[string]interface{} `json:"users"`
			Configs     map[string]string        `json:"configs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.GeneratedAt)
	assert.Equal(t, int64(2), envelope.Data.UserCount)
	require.Len(t, envelope.Data.Users, 2)
	assert.Equal(t, "ORG0001", envelope.Data.Users[0]["student_no"])
	assert.Equal(t, "ORGANIZER", envelope.Data.Users[0]["role"])
	assert.Equal(t, map[string]string{
		services.KeyMaintenanceMode:  "true",
		services.KeyOpenRegistration: "false",
	}, envelope.Data.Configs)
}
