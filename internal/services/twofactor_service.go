package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/repositories"
	"github.com/denverparsonswork-debug/dockside-helper/internal/utils"
)

var (
	ErrRateLimited    = errors.New("rate limited")
	ErrCodeInvalid    = errors.New("code invalid")
	ErrDispatchFailed = errors.New("dispatch failed")
)

// Настройки безопасности (фиксированы, как в проде)
const (
	requestWindow     = 15 * time.Minute
	maxRequestsWindow = 5
	verifyWindow      = 5 * time.Minute
	maxVerifiesWindow = 10

	loginCodeTTL     = 10 * time.Minute
	codeGracePeriod  = 1 * time.Hour
	attemptRetention = 24 * time.Hour
)

// TwoFactorService — второй фактор входа: код на почту.
// Все зависимости через конструктор, никаких глобальных клиентов.
type TwoFactorService struct {
	Drivers  repositories.DriverRepository
	Codes    repositories.LoginCodeRepository
	Attempts repositories.LoginAttemptRepository
	Emails   EmailService
	Alerts   *AlertService // может быть nil
}

func NewTwoFactorService(
	drivers repositories.DriverRepository,
	codes repositories.LoginCodeRepository,
	attempts repositories.LoginAttemptRepository,
	emails EmailService,
	alerts *AlertService,
) *TwoFactorService {
	return &TwoFactorService{
		Drivers:  drivers,
		Codes:    codes,
		Attempts: attempts,
		Emails:   emails,
		Alerts:   alerts,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// RequestCode — выдаёт и отправляет новый код.
//
// Для неизвестного email молча возвращаем nil: ни кода, ни письма, ни записи
// попытки. Снаружи ответ неотличим от удачного — нельзя перебором выяснять,
// какие адреса у нас заведены.
func (s *TwoFactorService) RequestCode(email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	since := time.Now().Add(-requestWindow)
	cnt, err := s.Attempts.CountSince(email, since)
	if err != nil {
		return err
	}
	if cnt >= maxRequestsWindow {
		return ErrRateLimited
	}

	driver, err := s.Drivers.GetByEmail(email)
	if err != nil {
		return err
	}
	if driver == nil {
		utils.Logger.Infof("[2fa][request] unknown email=%q, silently accepted", email)
		return nil
	}

	// Каждая выдача кода учитывается в окне запросов (15м/5).
	s.recordAttempt(email, "code requested")

	code, err := utils.GenerateLoginCode()
	if err != nil {
		return err
	}

	// Сначала гасим старые неиспользованные коды: активный код всегда один.
	if err := s.Codes.InvalidateActive(driver.ID); err != nil {
		return err
	}
	expiresAt := time.Now().Add(loginCodeTTL)
	if _, err := s.Codes.Create(driver.ID, code, expiresAt); err != nil {
		return err
	}

	if err := s.Emails.SendLoginCodeEmail(driver.Email, code); err != nil {
		// Код уже лежит в базе; повторный запрос выдаст новый.
		utils.Logger.Warnf("[2fa][request] send failed driver_id=%d: %v", driver.ID, err)
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	utils.Logger.Infof("[2fa][request] code sent driver_id=%d", driver.ID)
	return nil
}

// VerifyCode — проверка кода. Любой отказ (нет аккаунта, нет живого кода,
// не совпал) пишется в журнал попыток и наружу выглядит одинаково.
func (s *TwoFactorService) VerifyCode(email, candidate string) (*models.Driver, error) {
	email = normalizeEmail(email)
	candidate = strings.TrimSpace(candidate)
	if email == "" || candidate == "" {
		return nil, fmt.Errorf("email and code are required")
	}

	since := time.Now().Add(-verifyWindow)
	cnt, err := s.Attempts.CountSince(email, since)
	if err != nil {
		return nil, err
	}
	if cnt >= maxVerifiesWindow {
		// Сам отказ по лимиту попыткой не считается.
		if s.Alerts != nil {
			s.Alerts.NotifyRateLimited(email, cnt)
		}
		return nil, ErrRateLimited
	}

	driver, err := s.Drivers.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		s.recordAttempt(email, "unknown email")
		return nil, ErrCodeInvalid
	}

	active, err := s.Codes.GetActive(driver.ID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		s.recordAttempt(email, "no active code")
		return nil, ErrCodeInvalid
	}

	if subtle.ConstantTimeCompare([]byte(active.Code), []byte(candidate)) != 1 {
		s.recordAttempt(email, "code mismatch")
		return nil, ErrCodeInvalid
	}

	applied, err := s.Codes.MarkUsed(active.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Параллельная проверка успела первой.
		s.recordAttempt(email, "code already used")
		return nil, ErrCodeInvalid
	}

	go s.cleanup()

	utils.Logger.Infof("[2fa][verify] OK driver_id=%d", driver.ID)
	return driver, nil
}

// recordAttempt — журнал попыток не должен валить основной поток:
// лимитер деградирует, пользовательский ответ уходит как обычно.
func (s *TwoFactorService) recordAttempt(identifier, reason string) {
	if _, err := s.Attempts.Create(identifier); err != nil {
		utils.Logger.Warnf("[2fa][attempt] record failed identifier=%q: %v", identifier, err)
		return
	}
	utils.Logger.Infof("[2fa][attempt] recorded identifier=%q reason=%s", identifier, reason)
}

func (s *TwoFactorService) cleanup() {
	if err := s.Codes.DeleteExpired(codeGracePeriod); err != nil {
		utils.Logger.Warnf("[2fa][cleanup] expired codes: %v", err)
	}
	if err := s.Attempts.DeleteOlderThan(attemptRetention); err != nil {
		utils.Logger.Warnf("[2fa][cleanup] old attempts: %v", err)
	}
}
