package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendLoginCodeEmail(email, code string) error
	SendWelcomeEmail(email, fullName string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendLoginCodeEmail(email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your Dockside sign-in code")

	body := fmt.Sprintf(`
		<h3>Sign-in code</h3>
		<p>Your one-time code is: <strong>%s</strong></p>
		<p>The code is valid for 10 minutes. If you did not try to sign in, you can ignore this email.</p>
	`, code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send login code email: %w", err)
	}

	return nil
}

func (s *emailService) SendWelcomeEmail(email, fullName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Dockside Helper!")

	body := fmt.Sprintf(`
		<h2>Welcome aboard, %s!</h2>
		<p>A driver account has been created for you.</p>
		<p>Sign in with your email and password; we will email you a 6-digit code to finish each sign-in.</p>
	`, fullName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}
