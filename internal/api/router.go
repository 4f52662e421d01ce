// Package api - Router setup
package api

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(handler *Handler, adminHandler *AdminHandler) *gin.Engine {
	r := gin.Default()

	// CORS configuration
	// When credentials are used, specific origins must be provided (not *)
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Tenant-ID", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", "X-Row-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		// Development defaults - in production, set CORS_ALLOWED_ORIGINS
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8080",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:8080",
		}
	}

	r.Use(cors.New(corsConfig))

	// Health check (no auth required)
	r.GET("/api/health", handler.Health)

	// ==========================================================================
	// TENANT API - Property governance and schema versions
	// ==========================================================================
	tenantAPI := r.Group("/api")
	tenantAPI.Use(handler.TenantMiddleware())
	tenantAPI.Use(handler.UserMiddleware())
	tenantAPI.Use(handler.RequireAuthMiddleware())
	{
		properties := tenantAPI.Group("/properties")
		{
			properties.GET("", handler.ListProperties)
			properties.POST("", handler.CreateProperty)
			properties.POST("/validate-name", handler.ValidateName)
			properties.GET("/check-collision", handler.CheckNameCollision)
			properties.GET("/:id", handler.GetProperty)
			properties.GET("/:id/dependencies", handler.ListDependencies)
			properties.GET("/:id/guard", handler.EvaluateGuard)
			properties.GET("/:id/audit", handler.ListPropertyAudit)
			properties.POST("/:id/export", handler.ExportPropertyData)
			properties.POST("/:id/clear", handler.ClearPropertyData)
			properties.POST("/:id/archive", handler.ArchiveProperty)
			properties.POST("/:id/delete", handler.DeleteProperty)
			properties.POST("/:id/restore", handler.RequestRestoration)
			properties.POST("/:id/change-type", handler.ChangePropertyType)
		}

		versions := tenantAPI.Group("/schema-versions")
		{
			versions.GET("", handler.ListSchemaVersions)
			versions.GET("/tenant", handler.GetTenantSchemaVersion)
			versions.GET("/:version/compatibility", handler.CheckSchemaCompatibility)
			versions.POST("/upgrade", handler.InitiateSchemaUpgrade)
			versions.POST("/rollback", handler.RollbackSchemaUpgrade)
		}
	}

	// ==========================================================================
	// ADMIN API - Version catalog, tenants, retention jobs
	// Requires authentication with admin or super_admin role
	// ==========================================================================
	admin := r.Group("/admin")
	admin.Use(handler.UserMiddleware())
	admin.Use(handler.RequireAuthMiddleware())
	admin.Use(handler.RequireAdminMiddleware())
	{
		admin.POST("/schema-versions", handler.CreateSchemaVersion)
		admin.POST("/schema-versions/:version/deactivate", handler.DeactivateSchemaVersion)
		admin.GET("/schema-versions/dashboard", handler.GetMigrationDashboard)
		admin.POST("/retention/sweep", handler.RunArchiveSweep)
		admin.POST("/retention/purge", handler.RunPermanentDeletionJob)

		admin.GET("/tenants", adminHandler.ListTenants)
		admin.POST("/tenants", adminHandler.CreateTenant)
		admin.GET("/tenants/:id", adminHandler.GetTenant)
		admin.PUT("/tenants/:id", adminHandler.UpdateTenant)
		admin.DELETE("/tenants/:id", adminHandler.DeactivateTenant)
	}

	// Tenant-scoped admin operations still need the tenant header
	adminTenant := r.Group("/admin")
	adminTenant.Use(handler.TenantMiddleware())
	adminTenant.Use(handler.UserMiddleware())
	adminTenant.Use(handler.RequireAuthMiddleware())
	adminTenant.Use(handler.RequireAdminMiddleware())
	{
		adminTenant.POST("/properties/:id/restore/approve", handler.ApproveRestoration)
		adminTenant.POST("/schema-versions/complete", handler.CompleteSchemaUpgrade)
	}

	return r
}
