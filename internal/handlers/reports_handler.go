package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denverparsonswork-debug/dockside-helper/internal/services"
)

type ReportHandler struct {
	Drivers   services.DriverService
	Customers *services.CustomerService
}

func NewReportHandler(drivers services.DriverService, customers *services.CustomerService) *ReportHandler {
	return &ReportHandler{Drivers: drivers, Customers: customers}
}

// GetSummary — сводка для админки: сколько водителей и клиентов заведено.
func (h *ReportHandler) GetSummary(c *gin.Context) {
	driverCount, err := h.Drivers.GetDriverCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	customerCount, err := h.Customers.GetCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"drivers":   driverCount,
		"customers": customerCount,
	})
}
