package services

import (
	"context"
	"log"
	"time"

	"campushub/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// JanitorService runs scheduled memory and storage hygiene: sweeping
// expired verification codes/tokens and purging expired refresh tokens.
// Correctness never depends on it; expiry is also enforced lazily at read
// time.
type JanitorService struct {
	verification     *VerificationService
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewJanitorService creates a new janitor service
func NewJanitorService(verification *VerificationService, refreshTokenRepo repositories.RefreshTokenRepository) *JanitorService {
	return &JanitorService{
		verification:     verification,
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start schedules the sweep jobs
func (s *JanitorService) Start() {
	// Registry sweep every 5 minutes
	if _, err := s.cron.AddFunc("@every 5m", func() {
		s.verification.Sweep()
	}); err != nil {
		log.Printf("⚠️ Failed to schedule registry sweep: %v", err)
	}

	// Expired refresh-token purge once a day
	if _, err := s.cron.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
			log.Printf("⚠️ Failed to purge expired refresh tokens: %v", err)
		}
	}); err != nil {
		log.Printf("⚠️ Failed to schedule refresh-token purge: %v", err)
	}

	s.cron.Start()
	log.Println("🧹 Janitor started")
}

// Stop stops the scheduled jobs
func (s *JanitorService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Janitor stopped")
}
