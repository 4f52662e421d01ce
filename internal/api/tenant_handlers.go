// Package api - Tenant administration handlers
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/models"
)

// AdminHandler contains tenant administration handlers
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) respondError(c *gin.Context, err error) {
	status, body := apperrors.ToHTTPError(err)
	c.JSON(status, body)
}

// ListTenants returns all tenants
// GET /admin/tenants
func (h *AdminHandler) ListTenants(c *gin.Context) {
	var tenants []models.Tenant
	if err := h.db.Order("code ASC").Find(&tenants).Error; err != nil {
		h.respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// GetTenant returns a single tenant
// GET /admin/tenants/:id
func (h *AdminHandler) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.NewBadRequestError("invalid tenant id"))
		return
	}

	var tenant models.Tenant
	if err := h.db.First(&tenant, "id = ?", id).Error; err != nil {
		h.respondError(c, apperrors.NewNotFoundError("tenant"))
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// CreateTenant creates a new tenant
// POST /admin/tenants
func (h *AdminHandler) CreateTenant(c *gin.Context) {
	var input struct {
		Code     string                 `json:"code" binding:"required"`
		Name     string                 `json:"name" binding:"required"`
		Domain   string                 `json:"domain"`
		Settings map[string]interface{} `json:"settings"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	tenant := models.Tenant{
		ID:       uuid.New(),
		Code:     input.Code,
		Name:     input.Name,
		Domain:   input.Domain,
		Settings: models.JSONB(input.Settings),
		IsActive: true,
	}

	if err := h.db.Create(&tenant).Error; err != nil {
		h.respondError(c, apperrors.NewConflictError("tenant code already exists"))
		return
	}

	c.JSON(http.StatusCreated, tenant)
}

// UpdateTenant updates a tenant
// PUT /admin/tenants/:id
func (h *AdminHandler) UpdateTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.NewBadRequestError("invalid tenant id"))
		return
	}

	var tenant models.Tenant
	if err := h.db.First(&tenant, "id = ?", id).Error; err != nil {
		h.respondError(c, apperrors.NewNotFoundError("tenant"))
		return
	}

	var input struct {
		Name     *string                `json:"name"`
		Domain   *string                `json:"domain"`
		Settings map[string]interface{} `json:"settings"`
		IsActive *bool                  `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	if input.Name != nil {
		tenant.Name = *input.Name
	}
	if input.Domain != nil {
		tenant.Domain = *input.Domain
	}
	if input.Settings != nil {
		tenant.Settings = models.JSONB(input.Settings)
	}
	if input.IsActive != nil {
		tenant.IsActive = *input.IsActive
	}

	if err := h.db.Save(&tenant).Error; err != nil {
		h.respondError(c, apperrors.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// DeactivateTenant marks a tenant inactive without removing its data
// DELETE /admin/tenants/:id
func (h *AdminHandler) DeactivateTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.NewBadRequestError("invalid tenant id"))
		return
	}

	result := h.db.Model(&models.Tenant{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		h.respondError(c, apperrors.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		h.respondError(c, apperrors.NewNotFoundError("tenant"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tenant deactivated"})
}
