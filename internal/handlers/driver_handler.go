package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/services"
	"github.com/denverparsonswork-debug/dockside-helper/internal/utils"
)

type DriverHandler struct {
	driverService services.DriverService
}

func NewDriverHandler(driverService services.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

type createDriverRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	RoleID   int    `json:"role_id" binding:"required"`
}

type updateDriverRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	RoleID   int    `json:"role_id" binding:"required"`
}

// @Summary      Создать аккаунт водителя
// @Tags         Drivers
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Driver
// @Failure      400  {object}  map[string]string
// @Router       /drivers [post]
func (h *DriverHandler) Create(c *gin.Context) {
	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	driver := &models.Driver{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		RoleID:   req.RoleID,
	}
	if err := h.driverService.CreateDriverWithPassword(driver, req.Password); err != nil {
		utils.Logger.Infof("[drivers][create] failed email=%q: err=%v", req.Email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, driver)
}

func (h *DriverHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	driver, err := h.driverService.GetDriverByID(id)
	if err != nil || driver == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver not found"})
		return
	}
	c.JSON(http.StatusOK, driver)
}

func (h *DriverHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	existing, err := h.driverService.GetDriverByID(id)
	if err != nil || existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver not found"})
		return
	}

	var req updateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	existing.FullName = req.FullName
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.RoleID = req.RoleID

	if err := h.driverService.UpdateDriver(existing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (h *DriverHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.driverService.DeleteDriver(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver deleted"})
}

func (h *DriverHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	offset := (page - 1) * size

	drivers, err := h.driverService.ListDrivers(size, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, drivers)
}

func (h *DriverHandler) GetCount(c *gin.Context) {
	count, err := h.driverService.GetDriverCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
