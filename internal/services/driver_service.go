package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/repositories"
	"github.com/denverparsonswork-debug/dockside-helper/internal/utils"
)

type DriverService interface {
	CreateDriverWithPassword(driver *models.Driver, plainPassword string) error
	GetDriverByID(id int) (*models.Driver, error)
	UpdateDriver(driver *models.Driver) error
	DeleteDriver(id int) error
	ListDrivers(limit, offset int) ([]*models.Driver, error)
	GetDriverByEmail(email string) (*models.Driver, error)
	GetDriverCount() (int, error)

	// refresh helpers
	UpdateRefresh(driverID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Driver, error)
	GetByRefreshToken(token string) (*models.Driver, error)
}

type driverService struct {
	repo         repositories.DriverRepository
	emailService EmailService
	authService  AuthService
	alerts       *AlertService
}

func NewDriverService(repo repositories.DriverRepository, emailService EmailService, authService AuthService, alerts *AlertService) DriverService {
	return &driverService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
		alerts:       alerts,
	}
}

func (s *driverService) CreateDriverWithPassword(driver *models.Driver, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return fmt.Errorf("password is required")
	}
	driver.Email = strings.TrimSpace(strings.ToLower(driver.Email))
	if driver.Email == "" {
		return fmt.Errorf("email is required")
	}

	existing, err := s.repo.GetByEmail(driver.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("driver with this email already exists")
	}

	hashedPassword, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	driver.PasswordHash = hashedPassword

	if err := s.repo.Create(driver); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(driver.Email, driver.FullName); err != nil {
			// warn but do not fail creation
			utils.Logger.Warnf("[drivers][create] failed to send welcome email to %s: %v", driver.Email, err)
		}
	}
	if s.alerts != nil {
		s.alerts.NotifyDriverCreated(driver.FullName, driver.Email)
	}

	return nil
}

func (s *driverService) GetDriverByID(id int) (*models.Driver, error) {
	return s.repo.GetByID(id)
}

func (s *driverService) UpdateDriver(driver *models.Driver) error {
	return s.repo.Update(driver)
}

func (s *driverService) DeleteDriver(id int) error {
	return s.repo.Delete(id)
}

func (s *driverService) ListDrivers(limit, offset int) ([]*models.Driver, error) {
	return s.repo.List(limit, offset)
}

func (s *driverService) GetDriverByEmail(email string) (*models.Driver, error) {
	return s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
}

func (s *driverService) GetDriverCount() (int, error) {
	return s.repo.GetCount()
}

func (s *driverService) UpdateRefresh(driverID int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(driverID, token, expiresAt)
}

func (s *driverService) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Driver, error) {
	return s.repo.RotateRefresh(oldToken, newToken, newExpiresAt)
}

func (s *driverService) GetByRefreshToken(token string) (*models.Driver, error) {
	return s.repo.GetByRefreshToken(token)
}
