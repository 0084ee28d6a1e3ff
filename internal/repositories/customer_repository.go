package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(customer *models.Customer) (int64, error) {
	const q = `
		INSERT INTO customers (name, address, phone, gate_notes, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(q, customer.Name, customer.Address, customer.Phone, customer.GateNotes, customer.CreatedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

func (r *CustomerRepository) Update(customer *models.Customer) error {
	const q = `
		UPDATE customers
		SET name=$1, address=$2, phone=$3, gate_notes=$4
		WHERE id=$5
	`
	if _, err := r.db.Exec(q, customer.Name, customer.Address, customer.Phone, customer.GateNotes, customer.ID); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(id int) (*models.Customer, error) {
	const q = `
		SELECT id, name, address, phone, gate_notes, created_at
		FROM customers
		WHERE id=$1
	`
	var c models.Customer
	if err := r.db.QueryRow(q, id).Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.GateNotes, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) Delete(id int) error {
	if _, err := r.db.Exec(`DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) List(limit, offset int) ([]*models.Customer, error) {
	const q = `
		SELECT id, name, address, phone, gate_notes, created_at
		FROM customers
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var res []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.GateNotes, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

// FindByName — поиск по подстроке имени, это бэкенд автодополнения у водителей.
func (r *CustomerRepository) FindByName(name string) ([]*models.Customer, error) {
	const q = `
		SELECT id, name, address, phone, gate_notes, created_at
		FROM customers
		WHERE LOWER(name) LIKE $1
		ORDER BY name ASC
	`
	rows, err := r.db.Query(q, "%"+strings.ToLower(name)+"%")
	if err != nil {
		return nil, fmt.Errorf("find customers by name: %w", err)
	}
	defer rows.Close()

	var res []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.GateNotes, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

func (r *CustomerRepository) GetCount() (int, error) {
	var c int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&c); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return c, nil
}
