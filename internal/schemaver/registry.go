// Package schemaver maintains the platform schema version catalog and drives
// per-tenant upgrades and rollbacks along the declared compatibility graph.
package schemaver

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/models"
)

// Registry serves the platform-owned schema version catalog. The catalog is
// shared read-only across tenants.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// ListVersions returns the catalog ordered by version number
func (r *Registry) ListVersions() ([]models.SchemaVersion, error) {
	var versions []models.SchemaVersion
	if err := r.db.Order("version_number ASC").Find(&versions).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return versions, nil
}

// GetVersion fetches one catalog entry by version number
func (r *Registry) GetVersion(versionNumber int64) (models.SchemaVersion, error) {
	var version models.SchemaVersion
	err := r.db.Where("version_number = ?", versionNumber).First(&version).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.SchemaVersion{}, apperrors.NewNotFoundError(fmt.Sprintf("schema version %d", versionNumber))
		}
		return models.SchemaVersion{}, apperrors.NewInternalError(err)
	}
	return version, nil
}

// CreateVersionInput describes a new catalog entry
type CreateVersionInput struct {
	VersionNumber          int64    `json:"version_number"`
	VersionName            string   `json:"version_name"`
	CompatibleWithVersions []int64  `json:"compatible_with_versions"`
	BreakingChanges        []string `json:"breaking_changes"`
	RequiresAppVersion     string   `json:"requires_app_version"`
}

// CreateVersion registers a new schema version. Version numbers must grow
// strictly, so the new entry has to exceed every existing one.
func (r *Registry) CreateVersion(input CreateVersionInput) (models.SchemaVersion, error) {
	if input.VersionNumber <= 0 {
		return models.SchemaVersion{}, apperrors.NewValidationError("version_number", "must be positive")
	}
	if input.VersionName == "" {
		return models.SchemaVersion{}, apperrors.NewValidationError("version_name", "is required")
	}

	var maxVersion int64
	err := r.db.Model(&models.SchemaVersion{}).
		Select("coalesce(max(version_number), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return models.SchemaVersion{}, apperrors.NewInternalError(err)
	}
	if input.VersionNumber <= maxVersion {
		return models.SchemaVersion{}, apperrors.NewConflictError(
			fmt.Sprintf("version %d is not after the latest registered version %d", input.VersionNumber, maxVersion))
	}

	version := models.SchemaVersion{
		ID:                     uuid.New(),
		VersionNumber:          input.VersionNumber,
		VersionName:            input.VersionName,
		CompatibleWithVersions: models.Int64Array(input.CompatibleWithVersions),
		BreakingChanges:        models.StringArray(input.BreakingChanges),
		RequiresAppVersion:     input.RequiresAppVersion,
		IsActive:               true,
	}
	if err := r.db.Create(&version).Error; err != nil {
		return models.SchemaVersion{}, apperrors.NewInternalError(err)
	}
	return version, nil
}

// DeactivateVersion retires a catalog entry without removing it. Existing
// tenants stay on retired versions; new upgrades cannot target them.
func (r *Registry) DeactivateVersion(versionNumber int64) error {
	result := r.db.Model(&models.SchemaVersion{}).
		Where("version_number = ?", versionNumber).
		Update("is_active", false)
	if result.Error != nil {
		return apperrors.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("schema version %d", versionNumber))
	}
	return nil
}
