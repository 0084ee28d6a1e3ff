package services

import (
	"github.com/robfig/cron/v3"

	"github.com/denverparsonswork-debug/dockside-helper/internal/repositories"
	"github.com/denverparsonswork-debug/dockside-helper/internal/utils"
)

// CleanupService — фоновая чистка: протухшие коды (с часовым запасом)
// и записи попыток старше суток. Ошибки логируем и едем дальше.
type CleanupService struct {
	codes    repositories.LoginCodeRepository
	attempts repositories.LoginAttemptRepository
	cron     *cron.Cron
}

func NewCleanupService(codes repositories.LoginCodeRepository, attempts repositories.LoginAttemptRepository) *CleanupService {
	return &CleanupService{
		codes:    codes,
		attempts: attempts,
		cron:     cron.New(),
	}
}

func (s *CleanupService) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	utils.Logger.Infof("[cleanup] scheduled hourly")
	return nil
}

func (s *CleanupService) Stop() {
	s.cron.Stop()
}

func (s *CleanupService) runOnce() {
	if err := s.codes.DeleteExpired(codeGracePeriod); err != nil {
		utils.Logger.Warnf("[cleanup] expired login codes: %v", err)
	}
	if err := s.attempts.DeleteOlderThan(attemptRetention); err != nil {
		utils.Logger.Warnf("[cleanup] old login attempts: %v", err)
	}
}
