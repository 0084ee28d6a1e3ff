package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
)

type LoginCodeRepository interface {
	InvalidateActive(driverID int) error
	Create(driverID int, code string, expiresAt time.Time) (int64, error)
	GetActive(driverID int) (*models.LoginCode, error)
	MarkUsed(id int64) (bool, error)
	DeleteExpired(grace time.Duration) error
}

type loginCodeRepository struct {
	DB *sql.DB
}

func NewLoginCodeRepository(db *sql.DB) LoginCodeRepository {
	return &loginCodeRepository{DB: db}
}

// InvalidateActive — сносим все неиспользованные коды водителя (включая
// просроченные): перед выдачей нового кода активных быть не должно.
func (r *loginCodeRepository) InvalidateActive(driverID int) error {
	const q = `DELETE FROM login_codes WHERE driver_id = $1 AND used = FALSE`
	if _, err := r.DB.Exec(q, driverID); err != nil {
		return fmt.Errorf("login_code invalidate active: %w", err)
	}
	return nil
}

func (r *loginCodeRepository) Create(driverID int, code string, expiresAt time.Time) (int64, error) {
	const q = `
		INSERT INTO login_codes (driver_id, code, expires_at, used)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id
	`
	var id int64
	if err := r.DB.QueryRow(q, driverID, code, expiresAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("login_code create: %w", err)
	}
	return id, nil
}

// GetActive — последний живой код (по created_at DESC).
func (r *loginCodeRepository) GetActive(driverID int) (*models.LoginCode, error) {
	const q = `
		SELECT id, driver_id, code, expires_at, used, created_at
		FROM login_codes
		WHERE driver_id = $1 AND used = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRow(q, driverID)
	var c models.LoginCode
	if err := row.Scan(&c.ID, &c.DriverID, &c.Code, &c.ExpiresAt, &c.Used, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("login_code get active: %w", err)
	}
	return &c, nil
}

// MarkUsed — условный апдейт: used=TRUE только если код ещё не использован.
// Возвращает, применился ли апдейт; при гонке двух проверок выигрывает ровно одна.
func (r *loginCodeRepository) MarkUsed(id int64) (bool, error) {
	const q = `UPDATE login_codes SET used = TRUE WHERE id = $1 AND used = FALSE`
	res, err := r.DB.Exec(q, id)
	if err != nil {
		return false, fmt.Errorf("login_code mark used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("login_code mark used: %w", err)
	}
	return n > 0, nil
}

func (r *loginCodeRepository) DeleteExpired(grace time.Duration) error {
	const q = `DELETE FROM login_codes WHERE expires_at < NOW() - make_interval(secs => $1)`
	if _, err := r.DB.Exec(q, grace.Seconds()); err != nil {
		return fmt.Errorf("login_code delete expired: %w", err)
	}
	return nil
}
