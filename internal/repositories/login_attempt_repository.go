package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
)

type LoginAttemptRepository interface {
	Create(identifier string) (*models.LoginAttempt, error)
	CountSince(identifier string, since time.Time) (int, error)
	DeleteOlderThan(age time.Duration) error
}

type loginAttemptRepository struct {
	DB *sql.DB
}

func NewLoginAttemptRepository(db *sql.DB) LoginAttemptRepository {
	return &loginAttemptRepository{DB: db}
}

// Create — одна строка на каждую отклонённую попытку. Append-only.
func (r *loginAttemptRepository) Create(identifier string) (*models.LoginAttempt, error) {
	const q = `
		INSERT INTO login_attempts (identifier, attempt_time)
		VALUES ($1, NOW())
		RETURNING id, identifier, attempt_time, created_at
	`
	var a models.LoginAttempt
	if err := r.DB.QueryRow(q, identifier).Scan(&a.ID, &a.Identifier, &a.AttemptTime, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("login_attempt create: %w", err)
	}
	return &a, nil
}

// CountSince — сколько попыток по ключу за окно (для троттлинга).
func (r *loginAttemptRepository) CountSince(identifier string, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE identifier = $1 AND attempt_time >= $2
	`
	var c int
	if err := r.DB.QueryRow(q, identifier, since).Scan(&c); err != nil {
		return 0, fmt.Errorf("login_attempt count since: %w", err)
	}
	return c, nil
}

// DeleteOlderThan — идемпотентная чистка, безопасна при повторных запусках.
func (r *loginAttemptRepository) DeleteOlderThan(age time.Duration) error {
	const q = `DELETE FROM login_attempts WHERE attempt_time < NOW() - make_interval(secs => $1)`
	if _, err := r.DB.Exec(q, age.Seconds()); err != nil {
		return fmt.Errorf("login_attempt delete older than: %w", err)
	}
	return nil
}
