package schemaver

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tailtown/platform/internal/audit"
	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/models"
)

// RollbackWindow is how long after an upgrade a tenant may still roll back
const RollbackWindow = 72 * time.Hour

// Controller drives the per-tenant upgrade and rollback flow. Each tenant's
// row is mutated only through this controller, inside one transaction per
// call.
type Controller struct {
	db       *gorm.DB
	registry *Registry
	audit    *audit.Recorder
}

func NewController(db *gorm.DB, registry *Registry, recorder *audit.Recorder) *Controller {
	return &Controller{db: db, registry: registry, audit: recorder}
}

// GetTenantVersion loads a tenant's schema version row, creating the default
// row on first access.
func (c *Controller) GetTenantVersion(tenantID uuid.UUID) (models.TenantSchemaVersion, error) {
	var tsv models.TenantSchemaVersion
	err := c.db.Where("tenant_id = ?", tenantID).First(&tsv).Error
	if err == gorm.ErrRecordNotFound {
		tsv = models.TenantSchemaVersion{
			ID:                   uuid.New(),
			TenantID:             tenantID,
			CurrentSchemaVersion: 1,
			MigrationStatus:      models.MigrationNone,
		}
		if err := c.db.Create(&tsv).Error; err != nil {
			return models.TenantSchemaVersion{}, apperrors.NewInternalError(err)
		}
		return tsv, nil
	}
	if err != nil {
		return models.TenantSchemaVersion{}, apperrors.NewInternalError(err)
	}
	return tsv, nil
}

// ValidateUpgrade applies the upgrade admission rules without touching the
// store: the target must exist and be active, must be strictly ahead of the
// current version, and must list the current version as a direct predecessor.
func ValidateUpgrade(current int64, target models.SchemaVersion) error {
	if !target.IsActive {
		return apperrors.NewConflictError(fmt.Sprintf("schema version %d is no longer active", target.VersionNumber))
	}
	if target.VersionNumber <= current {
		return apperrors.NewConflictError(
			fmt.Sprintf("target version %d is not ahead of current version %d", target.VersionNumber, current))
	}
	if !target.IsCompatibleFrom(current) {
		return apperrors.NewConflictError(
			fmt.Sprintf("no direct upgrade path from version %d to version %d", current, target.VersionNumber))
	}
	return nil
}

// InitiateUpgrade schedules a tenant's migration to the target version. The
// data migration itself runs elsewhere; this call only records the intent and
// opens the rollback window bookkeeping.
func (c *Controller) InitiateUpgrade(tenantID uuid.UUID, targetVersion int64, userID uuid.UUID) (models.TenantSchemaVersion, error) {
	target, err := c.registry.GetVersion(targetVersion)
	if err != nil {
		return models.TenantSchemaVersion{}, err
	}

	tsv, err := c.GetTenantVersion(tenantID)
	if err != nil {
		return models.TenantSchemaVersion{}, err
	}
	if err := ValidateUpgrade(tsv.CurrentSchemaVersion, target); err != nil {
		return models.TenantSchemaVersion{}, err
	}
	if tsv.MigrationStatus == models.MigrationPending || tsv.MigrationStatus == models.MigrationInProgress {
		return models.TenantSchemaVersion{}, apperrors.NewConflictError("a migration is already underway for this tenant")
	}

	now := time.Now()
	tsv.TargetSchemaVersion = &targetVersion
	tsv.MigrationStatus = models.MigrationPending
	tsv.MigrationScheduledAt = &now

	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&tsv).Error; err != nil {
			return err
		}
		tid := tenantID
		return c.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   &tid,
			PropertyID: tsv.ID,
			ChangeType: models.ChangeTypeUpdate,
			ChangedBy:  userID,
			Reason:     fmt.Sprintf("schema upgrade scheduled: %d -> %d", tsv.CurrentSchemaVersion, targetVersion),
			RiskLevel:  models.RiskMedium,
		})
	})
	if err != nil {
		return models.TenantSchemaVersion{}, apperrors.NewInternalError(err)
	}
	return tsv, nil
}

// CompleteUpgrade is invoked by the migration executor once the data has been
// moved. It promotes the target, enables rollback, and opens the window.
func (c *Controller) CompleteUpgrade(tenantID uuid.UUID) (models.TenantSchemaVersion, error) {
	tsv, err := c.GetTenantVersion(tenantID)
	if err != nil {
		return models.TenantSchemaVersion{}, err
	}
	if tsv.TargetSchemaVersion == nil ||
		(tsv.MigrationStatus != models.MigrationPending && tsv.MigrationStatus != models.MigrationInProgress) {
		return models.TenantSchemaVersion{}, apperrors.NewConflictError("no migration underway for this tenant")
	}

	windowUntil := time.Now().Add(RollbackWindow)
	tsv.PreviousSchemaVersion = tsv.CurrentSchemaVersion
	tsv.CurrentSchemaVersion = *tsv.TargetSchemaVersion
	tsv.TargetSchemaVersion = nil
	tsv.MigrationStatus = models.MigrationCompleted
	tsv.RollbackEnabled = true
	tsv.RollbackWindowUntil = &windowUntil
	tsv.UseNewSchema = true

	if err := c.db.Save(&tsv).Error; err != nil {
		return models.TenantSchemaVersion{}, apperrors.NewInternalError(err)
	}
	return tsv, nil
}

// ValidateRollback enforces the rollback window without touching the store
func ValidateRollback(tsv models.TenantSchemaVersion, now time.Time) error {
	if !tsv.RollbackEnabled {
		return apperrors.NewConflictError("rollback is not enabled for this tenant's migration")
	}
	if tsv.RollbackWindowUntil == nil || now.After(*tsv.RollbackWindowUntil) {
		return apperrors.NewConflictError("the rollback window for this migration has expired")
	}
	return nil
}

// RollbackUpgrade reverts the tenant to its previous schema version. A
// rollback consumes the window; the same migration cannot be rolled back
// twice.
func (c *Controller) RollbackUpgrade(tenantID uuid.UUID, reason string, userID uuid.UUID) (models.TenantSchemaVersion, error) {
	tsv, err := c.GetTenantVersion(tenantID)
	if err != nil {
		return models.TenantSchemaVersion{}, err
	}
	if err := ValidateRollback(tsv, time.Now()); err != nil {
		return models.TenantSchemaVersion{}, err
	}

	rolledBackFrom := tsv.CurrentSchemaVersion
	tsv.CurrentSchemaVersion = tsv.PreviousSchemaVersion
	tsv.TargetSchemaVersion = nil
	tsv.MigrationStatus = models.MigrationRolledBack
	tsv.RollbackEnabled = false
	tsv.RollbackWindowUntil = nil
	tsv.UseNewSchema = false

	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&tsv).Error; err != nil {
			return err
		}
		tid := tenantID
		return c.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   &tid,
			PropertyID: tsv.ID,
			ChangeType: models.ChangeTypeUpdate,
			ChangedBy:  userID,
			Reason:     fmt.Sprintf("schema rollback: %d -> %d: %s", rolledBackFrom, tsv.CurrentSchemaVersion, reason),
			RiskLevel:  models.RiskHigh,
		})
	})
	if err != nil {
		return models.TenantSchemaVersion{}, apperrors.NewInternalError(err)
	}
	return tsv, nil
}

// CompatibilityResult is the read-only answer to "can this tenant move to
// that version".
type CompatibilityResult struct {
	CurrentVersion  int64    `json:"current_version"`
	TargetVersion   int64    `json:"target_version"`
	IsCompatible    bool     `json:"is_compatible"`
	BreakingChanges []string `json:"breaking_changes,omitempty"`
}

// CheckCompatibility performs the pure single-hop membership test
func (c *Controller) CheckCompatibility(tenantID uuid.UUID, targetVersion int64) (CompatibilityResult, error) {
	target, err := c.registry.GetVersion(targetVersion)
	if err != nil {
		return CompatibilityResult{}, err
	}
	tsv, err := c.GetTenantVersion(tenantID)
	if err != nil {
		return CompatibilityResult{}, err
	}
	return CompatibilityResult{
		CurrentVersion:  tsv.CurrentSchemaVersion,
		TargetVersion:   targetVersion,
		IsCompatible:    target.IsCompatibleFrom(tsv.CurrentSchemaVersion),
		BreakingChanges: target.BreakingChanges,
	}, nil
}

// MigrationStatusDashboard lists every tenant's schema row for the rollout
// dashboard, ordered by rollout priority then scheduling time.
func (c *Controller) MigrationStatusDashboard() ([]models.TenantSchemaVersion, error) {
	var rows []models.TenantSchemaVersion
	err := c.db.
		Preload("Tenant").
		Order("rollout_priority ASC, migration_scheduled_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return rows, nil
}
