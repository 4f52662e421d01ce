package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/schemaver"
)

// =============================================================================
// SCHEMA VERSION ENDPOINTS
// =============================================================================

// ListSchemaVersions returns the platform version catalog
// GET /api/schema-versions
func (h *Handler) ListSchemaVersions(c *gin.Context) {
	versions, err := h.registry.ListVersions()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions, "count": len(versions)})
}

// GetTenantSchemaVersion returns the tenant's current schema row
// GET /api/schema-versions/tenant
func (h *Handler) GetTenantSchemaVersion(c *gin.Context) {
	tsv, err := h.controller.GetTenantVersion(h.tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tsv)
}

// CheckSchemaCompatibility tests the single-hop upgrade path
// GET /api/schema-versions/:version/compatibility
func (h *Handler) CheckSchemaCompatibility(c *gin.Context) {
	target, ok := h.parseVersion(c)
	if !ok {
		return
	}

	result, err := h.controller.CheckCompatibility(h.tenantID(c), target)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// InitiateSchemaUpgrade schedules the tenant's migration to a newer version
// POST /api/schema-versions/upgrade
func (h *Handler) InitiateSchemaUpgrade(c *gin.Context) {
	var req struct {
		TargetVersion int64 `json:"target_version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	tsv, err := h.controller.InitiateUpgrade(h.tenantID(c), req.TargetVersion, h.userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tsv)
}

// RollbackSchemaUpgrade reverts the tenant within the rollback window
// POST /api/schema-versions/rollback
func (h *Handler) RollbackSchemaUpgrade(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	tsv, err := h.controller.RollbackUpgrade(h.tenantID(c), req.Reason, h.userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tsv)
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// CreateSchemaVersion registers a new catalog entry
// POST /admin/schema-versions
func (h *Handler) CreateSchemaVersion(c *gin.Context) {
	var input schemaver.CreateVersionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	version, err := h.registry.CreateVersion(input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, version)
}

// DeactivateSchemaVersion retires a catalog entry
// POST /admin/schema-versions/:version/deactivate
func (h *Handler) DeactivateSchemaVersion(c *gin.Context) {
	version, ok := h.parseVersion(c)
	if !ok {
		return
	}
	if err := h.registry.DeactivateVersion(version); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": version})
}

// CompleteSchemaUpgrade is called by the migration executor on success
// POST /admin/schema-versions/complete
func (h *Handler) CompleteSchemaUpgrade(c *gin.Context) {
	tsv, err := h.controller.CompleteUpgrade(h.tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tsv)
}

// GetMigrationDashboard aggregates every tenant's migration state
// GET /admin/schema-versions/dashboard
func (h *Handler) GetMigrationDashboard(c *gin.Context) {
	rows, err := h.controller.MigrationStatusDashboard()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": rows, "count": len(rows)})
}

// RunArchiveSweep triggers the archival sweep immediately
// POST /admin/retention/sweep
func (h *Handler) RunArchiveSweep(c *gin.Context) {
	result, err := h.retention.RunArchiveSweep()
	if err != nil {
		h.respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunPermanentDeletionJob triggers the capped purge immediately
// POST /admin/retention/purge
func (h *Handler) RunPermanentDeletionJob(c *gin.Context) {
	result := h.retention.RunPermanentDeletionJob()
	status := http.StatusOK
	if !result.Success && result.Error != "" {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

func (h *Handler) parseVersion(c *gin.Context) (int64, bool) {
	version, err := strconv.ParseInt(c.Param("version"), 10, 64)
	if err != nil {
		h.respondError(c, apperrors.NewBadRequestError("invalid version number"))
		return 0, false
	}
	return version, true
}
