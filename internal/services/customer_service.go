package services

import (
	"errors"
	"strings"
	"time"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/repositories"
)

type CustomerService struct {
	Repo *repositories.CustomerRepository
}

func NewCustomerService(repo *repositories.CustomerRepository) *CustomerService {
	return &CustomerService{Repo: repo}
}

func (s *CustomerService) Create(customer *models.Customer) (int64, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return 0, errors.New("name is required")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now()
	}
	return s.Repo.Create(customer)
}

func (s *CustomerService) Update(customer *models.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return errors.New("name is required")
	}
	return s.Repo.Update(customer)
}

func (s *CustomerService) GetByID(id int) (*models.Customer, error) {
	return s.Repo.GetByID(id)
}

func (s *CustomerService) Delete(id int) error {
	return s.Repo.Delete(id)
}

func (s *CustomerService) List(limit, offset int) ([]*models.Customer, error) {
	return s.Repo.List(limit, offset)
}

// Search — пустой запрос отдаёт обычный список (первая страница).
func (s *CustomerService) Search(query string) ([]*models.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Repo.List(100, 0)
	}
	return s.Repo.FindByName(query)
}

func (s *CustomerService) GetCount() (int, error) {
	return s.Repo.GetCount()
}
