package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
)

type DriverRepository interface {
	Create(driver *models.Driver) error
	GetByID(id int) (*models.Driver, error)
	Update(driver *models.Driver) error
	Delete(id int) error
	List(limit, offset int) ([]*models.Driver, error)
	GetByEmail(email string) (*models.Driver, error)
	GetCount() (int, error)

	// refresh helpers
	UpdateRefresh(driverID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Driver, error)
	ClearRefresh(driverID int) error
	GetByRefreshToken(token string) (*models.Driver, error)
}

type driverRepository struct {
	DB *sql.DB
}

func NewDriverRepository(db *sql.DB) DriverRepository {
	return &driverRepository{DB: db}
}

const driverColumns = `
	id, full_name, email, phone, password_hash, role_id,
	refresh_token, refresh_expires_at, refresh_revoked, created_at
`

func (r *driverRepository) scanDriver(row *sql.Row) (*models.Driver, error) {
	d := &models.Driver{}
	var (
		rt  sql.NullString
		rte sql.NullTime
		rr  sql.NullBool
	)
	err := row.Scan(
		&d.ID, &d.FullName, &d.Email, &d.Phone, &d.PasswordHash, &d.RoleID,
		&rt, &rte, &rr, &d.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if rt.Valid {
		d.RefreshToken = &rt.String
	}
	if rte.Valid {
		d.RefreshExpiresAt = &rte.Time
	}
	d.RefreshRevoked = rr.Valid && rr.Bool
	return d, nil
}

func (r *driverRepository) Create(driver *models.Driver) error {
	const q = `
		INSERT INTO drivers (full_name, email, phone, password_hash, role_id,
			refresh_token, refresh_expires_at, refresh_revoked)
		VALUES ($1, $2, $3, $4, $5, NULL, NULL, FALSE)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q,
		driver.FullName, driver.Email, driver.Phone, driver.PasswordHash, driver.RoleID,
	).Scan(&driver.ID, &driver.CreatedAt); err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	return nil
}

func (r *driverRepository) GetByID(id int) (*models.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	d, err := r.scanDriver(r.DB.QueryRow(q, id))
	if err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}
	return d, nil
}

func (r *driverRepository) GetByEmail(email string) (*models.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers WHERE LOWER(email) = LOWER($1)`
	d, err := r.scanDriver(r.DB.QueryRow(q, email))
	if err != nil {
		return nil, fmt.Errorf("get driver by email: %w", err)
	}
	return d, nil
}

func (r *driverRepository) Update(driver *models.Driver) error {
	const q = `
		UPDATE drivers
		SET full_name=$1, email=$2, phone=$3, role_id=$4
		WHERE id=$5
	`
	if _, err := r.DB.Exec(q, driver.FullName, driver.Email, driver.Phone, driver.RoleID, driver.ID); err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	return nil
}

func (r *driverRepository) Delete(id int) error {
	if _, err := r.DB.Exec(`DELETE FROM drivers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	return nil
}

func (r *driverRepository) List(limit, offset int) ([]*models.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var res []*models.Driver
	for rows.Next() {
		d := &models.Driver{}
		var (
			rt  sql.NullString
			rte sql.NullTime
			rr  sql.NullBool
		)
		if err := rows.Scan(
			&d.ID, &d.FullName, &d.Email, &d.Phone, &d.PasswordHash, &d.RoleID,
			&rt, &rte, &rr, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if rt.Valid {
			d.RefreshToken = &rt.String
		}
		if rte.Valid {
			d.RefreshExpiresAt = &rte.Time
		}
		d.RefreshRevoked = rr.Valid && rr.Bool
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r *driverRepository) GetCount() (int, error) {
	var c int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM drivers`).Scan(&c); err != nil {
		return 0, fmt.Errorf("count drivers: %w", err)
	}
	return c, nil
}

func (r *driverRepository) UpdateRefresh(driverID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE drivers
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	if _, err := r.DB.Exec(q, token, expiresAt, driverID); err != nil {
		return fmt.Errorf("update refresh: %w", err)
	}
	return nil
}

// RotateRefresh — атомарная замена refresh-токена: старый должен совпасть.
func (r *driverRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Driver, error) {
	q := `
		UPDATE drivers
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING ` + driverColumns
	d, err := r.scanDriver(r.DB.QueryRow(q, newToken, newExpiresAt, oldToken))
	if err != nil {
		return nil, fmt.Errorf("rotate refresh: %w", err)
	}
	return d, nil
}

func (r *driverRepository) ClearRefresh(driverID int) error {
	const q = `
		UPDATE drivers
		SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE
		WHERE id=$1
	`
	if _, err := r.DB.Exec(q, driverID); err != nil {
		return fmt.Errorf("clear refresh: %w", err)
	}
	return nil
}

func (r *driverRepository) GetByRefreshToken(token string) (*models.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers WHERE refresh_token = $1`
	d, err := r.scanDriver(r.DB.QueryRow(q, token))
	if err != nil {
		return nil, fmt.Errorf("get driver by refresh token: %w", err)
	}
	return d, nil
}
