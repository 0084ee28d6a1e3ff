package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
)

func TestCustomerValidation(t *testing.T) {
	// до репозитория дело дойти не должно
	svc := NewCustomerService(nil)

	_, err := svc.Create(&models.Customer{Name: "   "})
	require.Error(t, err)

	err = svc.Update(&models.Customer{ID: 1, Name: ""})
	require.Error(t, err)
}
