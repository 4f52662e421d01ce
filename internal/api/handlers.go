// Package api contains the HTTP API handlers for the Tailtown platform
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tailtown/platform/internal/audit"
	"github.com/tailtown/platform/internal/auth"
	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/export"
	"github.com/tailtown/platform/internal/governance"
	"github.com/tailtown/platform/internal/retention"
	"github.com/tailtown/platform/internal/schemaver"
)

// Handler contains all API handlers
type Handler struct {
	governance *governance.Service
	export     *export.Service
	audit      *audit.Recorder
	registry   *schemaver.Registry
	controller *schemaver.Controller
	retention  *retention.Service
	jwt        *auth.JWTService
}

// NewHandler creates a new API handler
func NewHandler(
	gov *governance.Service,
	exp *export.Service,
	recorder *audit.Recorder,
	registry *schemaver.Registry,
	controller *schemaver.Controller,
	ret *retention.Service,
	jwtService *auth.JWTService,
) *Handler {
	return &Handler{
		governance: gov,
		export:     exp,
		audit:      recorder,
		registry:   registry,
		controller: controller,
		retention:  ret,
		jwt:        jwtService,
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// TenantMiddleware extracts tenant from header or query param
func (h *Handler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try header first
		tenantIDStr := c.GetHeader("X-Tenant-ID")
		if tenantIDStr == "" {
			// Try query param (for testing)
			tenantIDStr = c.Query("tenant_id")
		}

		if tenantIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
			c.Abort()
			return
		}

		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
			c.Abort()
			return
		}

		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

// UserMiddleware validates the bearer token and stores the claims
func (h *Handler) UserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		claims, err := h.jwt.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("claims", claims)
		c.Next()
	}
}

// RequireAuthMiddleware aborts requests without a valid token
func (h *Handler) RequireAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_id"); !exists {
			h.respondError(c, apperrors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminMiddleware restricts a route group to admin tokens
func (h *Handler) RequireAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsVal, exists := c.Get("claims")
		if !exists {
			h.respondError(c, apperrors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}
		claims := claimsVal.(*auth.Claims)
		if !claims.HasRole("admin") && !claims.HasRole("super_admin") {
			h.respondError(c, apperrors.NewPermissionDeniedError("access", "admin endpoints"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// respondError renders a structured error response
func (h *Handler) respondError(c *gin.Context, err error) {
	status, body := apperrors.ToHTTPError(err)
	c.JSON(status, body)
}

func (h *Handler) tenantID(c *gin.Context) uuid.UUID {
	return c.MustGet("tenant_id").(uuid.UUID)
}

func (h *Handler) userID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get("user_id"); exists {
		return v.(uuid.UUID)
	}
	return uuid.Nil
}

// Health reports service liveness
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
