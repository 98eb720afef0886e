package config

import (
	"log"

	"campushub/internal/adapters/persistence/models"
	"campushub/internal/core/domain"
	"campushub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSystemConfigs(); err != nil {
		return err
	}
	if err := s.seedOrganizerUser(); err != nil {
		log.Printf("⚠️ Organizer seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSystemConfigs inserts the runtime flags when absent.
// Maintenance starts off; registration starts open.
func (s *Seeder) seedSystemConfigs() error {
	defaults := []models.SystemConfig{
		{Key: "maintenance_mode", Value: "false", Remark: "Service-wide maintenance gate"},
		{Key: "open_registration", Value: "true", Remark: "Accept new account registrations"},
	}

	for _, cfg := range defaults {
		var count int64
		s.db.Model(&models.SystemConfig{}).Where("config_key = ?", cfg.Key).Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&cfg).Error; err != nil {
			return err
		}
		log.Printf("🌱 Seeded config %s=%s", cfg.Key, cfg.Value)
	}
	return nil
}

// seedOrganizerUser seeds a default organizer account for development.
// In production, create the organizer through a secure process.
func (s *Seeder) seedOrganizerUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role_level = ?", domain.RoleOrganizer.Level()).Count(&count)
	if count > 0 {
		return nil // Organizer already exists
	}

	hashedPassword, err := password.Hash("organizer123456")
	if err != nil {
		return err
	}

	organizer := &models.User{
		StudentNo: "ORG0001",
		Username:  "organizer",
		Email:     "organizer@campushub.edu",
		Password:  hashedPassword,
		RoleLevel: domain.RoleOrganizer.Level(),
		Status:    string(domain.StatusActive),
	}

	if err := s.db.Create(organizer).Error; err != nil {
		return err
	}

	log.Printf("✅ Organizer user created: %s", organizer.Username)
	return nil
}
