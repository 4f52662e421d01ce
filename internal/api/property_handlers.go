package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/export"
	"github.com/tailtown/platform/internal/governance"
	"github.com/tailtown/platform/internal/models"
	"github.com/tailtown/platform/internal/naming"
)

// =============================================================================
// PROPERTY GOVERNANCE ENDPOINTS
// =============================================================================

// ListProperties returns the property definitions visible to the tenant
// GET /api/properties
func (h *Handler) ListProperties(c *gin.Context) {
	props, err := h.governance.ListProperties(h.tenantID(c), models.ObjectType(c.Query("object_type")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "count": len(props)})
}

// GetProperty returns one property definition
// GET /api/properties/:id
func (h *Handler) GetProperty(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}
	prop, err := h.governance.GetProperty(propertyID, h.tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// CreateProperty defines a new property
// POST /api/properties
func (h *Handler) CreateProperty(c *gin.Context) {
	var input governance.CreatePropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}
	prop, err := h.governance.CreateProperty(input, h.tenantID(c), h.userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prop)
}

// ValidateName runs the naming grammar without creating anything
// POST /api/properties/validate-name
func (h *Handler) ValidateName(c *gin.Context) {
	var input struct {
		Name         string `json:"name" binding:"required"`
		PropertyType string `json:"property_type" binding:"required"`
		DataType     string `json:"data_type"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	result := naming.Validate(input.Name, models.PropertyType(input.PropertyType), models.DataType(input.DataType))
	c.JSON(http.StatusOK, result)
}

// CheckNameCollision tests a proposed name against existing definitions
// GET /api/properties/check-collision
func (h *Handler) CheckNameCollision(c *gin.Context) {
	name := c.Query("name")
	objectType := models.ObjectType(c.Query("object_type"))
	if name == "" || objectType == "" {
		h.respondError(c, apperrors.NewBadRequestError("name and object_type are required"))
		return
	}

	result, err := h.governance.CheckNameCollision(name, objectType, h.tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListDependencies returns the active dependency edges of a property
// GET /api/properties/:id/dependencies
func (h *Handler) ListDependencies(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}
	deps, err := h.governance.ListDependencies(propertyID, h.tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	summary, err := h.governance.DependencySummaryFor(propertyID, h.tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dependencies": deps, "summary": summary})
}

// EvaluateGuard runs the deletion guard without mutating anything
// GET /api/properties/:id/guard
func (h *Handler) EvaluateGuard(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	op := governance.Operation(c.DefaultQuery("operation", string(governance.OperationDelete)))
	if op != governance.OperationDelete && op != governance.OperationArchive {
		h.respondError(c, apperrors.NewBadRequestError("operation must be 'delete' or 'archive'"))
		return
	}

	result, err := h.governance.EvaluateDeletionGuard(propertyID, h.tenantID(c), op)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportPropertyData streams the property's values as a CSV attachment
// POST /api/properties/:id/export
func (h *Handler) ExportPropertyData(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.export.ExportData(propertyID, h.tenantID(c), h.userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Header("X-Row-Count", strconv.Itoa(result.RowCount))
	c.Data(http.StatusOK, "text/csv", result.Data)
}

// ClearPropertyData removes every stored value under the property
// POST /api/properties/:id/clear
func (h *Handler) ClearPropertyData(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req export.ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	result, err := h.export.ClearData(propertyID, h.tenantID(c), h.userID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ArchiveProperty archives a property and starts its retention window
// POST /api/properties/:id/archive
func (h *Handler) ArchiveProperty(c *gin.Context) {
	h.lifecycleTransition(c, h.governance.ArchiveProperty)
}

// DeleteProperty soft-deletes a property
// POST /api/properties/:id/delete
func (h *Handler) DeleteProperty(c *gin.Context) {
	h.lifecycleTransition(c, h.governance.SoftDeleteProperty)
}

func (h *Handler) lifecycleTransition(
	c *gin.Context,
	fn func(uuid.UUID, uuid.UUID, uuid.UUID, governance.LifecycleRequest) (models.PropertyDefinition, error),
) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req governance.LifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	prop, err := fn(propertyID, h.tenantID(c), h.userID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// RequestRestoration asks for a deleted or archived property back
// POST /api/properties/:id/restore
func (h *Handler) RequestRestoration(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	prop, err := h.governance.RequestRestoration(propertyID, h.tenantID(c), h.userID(c), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// ApproveRestoration completes a pending archived-property restoration
// POST /admin/properties/:id/restore/approve
func (h *Handler) ApproveRestoration(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	prop, err := h.governance.ApproveRestoration(propertyID, h.tenantID(c), h.userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// ChangePropertyType retypes a property under the conversion safety rules
// POST /api/properties/:id/change-type
func (h *Handler) ChangePropertyType(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req struct {
		DataType string `json:"data_type" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	prop, err := h.governance.ChangePropertyType(propertyID, h.tenantID(c), h.userID(c), models.DataType(req.DataType), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// ListPropertyAudit returns the audit trail for one property
// GET /api/properties/:id/audit
func (h *Handler) ListPropertyAudit(c *gin.Context) {
	propertyID, ok := h.parseID(c)
	if !ok {
		return
	}

	entries, err := h.audit.ListForProperty(propertyID, h.tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.NewBadRequestError("invalid property id"))
		return uuid.Nil, false
	}
	return id, true
}
