package schemaver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tailtown/platform/internal/models"
)

func catalogVersion(number int64, compatibleFrom ...int64) models.SchemaVersion {
	return models.SchemaVersion{
		VersionNumber:          number,
		VersionName:            "test",
		CompatibleWithVersions: models.Int64Array(compatibleFrom),
		IsActive:               true,
	}
}

func TestValidateUpgradeForwardOnly(t *testing.T) {
	target := catalogVersion(3, 2)

	assert.Error(t, ValidateUpgrade(3, target), "same version must be rejected")
	assert.Error(t, ValidateUpgrade(4, target), "downgrade must be rejected")
	assert.NoError(t, ValidateUpgrade(2, target))
}

// Upgrade admission tests only direct membership in the target's
// compatibility list; no multi-hop chaining through intermediate versions.
func TestValidateUpgradeSingleHopOnly(t *testing.T) {
	target := catalogVersion(5, 4)

	err := ValidateUpgrade(3, target)
	assert.Error(t, err, "version 3 has no direct path to 5 even though 5 > 3")

	assert.NoError(t, ValidateUpgrade(4, target))
}

func TestValidateUpgradeInactiveTarget(t *testing.T) {
	target := catalogVersion(2, 1)
	target.IsActive = false

	assert.Error(t, ValidateUpgrade(1, target))
}

func TestValidateUpgradeMultipleCompatiblePredecessors(t *testing.T) {
	target := catalogVersion(4, 2, 3)

	assert.NoError(t, ValidateUpgrade(2, target))
	assert.NoError(t, ValidateUpgrade(3, target))
	assert.Error(t, ValidateUpgrade(1, target))
}

func TestValidateRollbackWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	windowUntil := now.Add(24 * time.Hour)

	open := models.TenantSchemaVersion{
		RollbackEnabled:     true,
		RollbackWindowUntil: &windowUntil,
	}
	assert.NoError(t, ValidateRollback(open, now))

	// expired window fails even with rollback enabled
	assert.Error(t, ValidateRollback(open, windowUntil.Add(time.Minute)))

	disabled := models.TenantSchemaVersion{RollbackWindowUntil: &windowUntil}
	assert.Error(t, ValidateRollback(disabled, now))

	noWindow := models.TenantSchemaVersion{RollbackEnabled: true}
	assert.Error(t, ValidateRollback(noWindow, now))
}

func TestValidateRollbackAtWindowBoundary(t *testing.T) {
	windowUntil := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tsv := models.TenantSchemaVersion{
		RollbackEnabled:     true,
		RollbackWindowUntil: &windowUntil,
	}

	// exactly at the boundary is still inside the window
	assert.NoError(t, ValidateRollback(tsv, windowUntil))
}

func TestIsCompatibleFrom(t *testing.T) {
	version := catalogVersion(5, 3, 4)

	assert.True(t, version.IsCompatibleFrom(3))
	assert.True(t, version.IsCompatibleFrom(4))
	assert.False(t, version.IsCompatibleFrom(2))
	assert.False(t, version.IsCompatibleFrom(5))
}
