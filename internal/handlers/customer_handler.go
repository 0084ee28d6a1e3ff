package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denverparsonswork-debug/dockside-helper/internal/authz"
	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/pdf"
	"github.com/denverparsonswork-debug/dockside-helper/internal/services"
)

type CustomerHandler struct {
	Service *services.CustomerService
	PDF     pdf.Generator
}

type createCustomerRequest struct {
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	GateNotes string `json:"gate_notes"`
}

type updateCustomerRequest struct {
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	GateNotes string `json:"gate_notes"`
}

func NewCustomerHandler(service *services.CustomerService, gen pdf.Generator) *CustomerHandler {
	return &CustomerHandler{Service: service, PDF: gen}
}

// @Summary      Создать клиента
// @Tags         Customers
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Customer
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	_, roleID := getDriverAndRole(c)
	if !authz.IsElevated(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer := &models.Customer{
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		GateNotes: req.GateNotes,
		CreatedAt: time.Now(),
	}
	id, err := h.Service.Create(customer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer.ID = int(id)
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	_, roleID := getDriverAndRole(c)
	if !authz.IsElevated(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	existing, err := h.Service.GetByID(id)
	if err != nil || existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	existing.Name = req.Name
	existing.Address = req.Address
	existing.Phone = req.Phone
	existing.GateNotes = req.GateNotes

	if err := h.Service.Update(existing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	_, roleID := getDriverAndRole(c)
	if !authz.IsElevated(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.Service.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted"})
}

func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	customer, err := h.Service.GetByID(id)
	if err != nil || customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "100"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 100
	}
	offset := (page - 1) * size

	customers, err := h.Service.List(size, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Search — бэкенд автодополнения: ?q=подстрока имени.
func (h *CustomerHandler) Search(c *gin.Context) {
	customers, err := h.Service.Search(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// RouteSheet — PDF со всем справочником, для печати.
func (h *CustomerHandler) RouteSheet(c *gin.Context) {
	customers, err := h.Service.List(1000, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data, err := h.PDF.GenerateRouteSheet(customers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate route sheet"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="route_sheet.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
