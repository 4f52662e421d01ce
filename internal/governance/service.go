package governance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tailtown/platform/internal/audit"
	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/models"
	"github.com/tailtown/platform/internal/naming"
	"github.com/tailtown/platform/internal/storage"
)

// Config carries the governance settings read at startup
type Config struct {
	// RetentionYears is the mandatory minimum time an archived property must
	// remain recoverable before permanent deletion is permitted.
	RetentionYears int
}

// DefaultConfig returns the compliance defaults
func DefaultConfig() Config {
	return Config{RetentionYears: 7}
}

// Service orchestrates property governance over the relational store.
// Every query it runs is scoped by `tenant_id = ? OR is_global = true`.
type Service struct {
	db    *gorm.DB
	audit *audit.Recorder
	cfg   Config
}

// NewService creates a governance service
func NewService(db *gorm.DB, recorder *audit.Recorder, cfg Config) *Service {
	if cfg.RetentionYears <= 0 {
		cfg.RetentionYears = DefaultConfig().RetentionYears
	}
	return &Service{db: db, audit: recorder, cfg: cfg}
}

// GetProperty loads a property visible in the tenant's scope
func (s *Service) GetProperty(propertyID, tenantID uuid.UUID) (models.PropertyDefinition, error) {
	var prop models.PropertyDefinition
	err := s.db.
		Where("id = ?", propertyID).
		Where("tenant_id = ? OR is_global = ?", tenantID, true).
		First(&prop).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.PropertyDefinition{}, apperrors.NewNotFoundError("property")
		}
		return models.PropertyDefinition{}, apperrors.NewInternalError(err)
	}
	return prop, nil
}

// ListProperties returns the definitions visible to a tenant for one object
// type, or for all object types when objectType is empty.
func (s *Service) ListProperties(tenantID uuid.UUID, objectType models.ObjectType) ([]models.PropertyDefinition, error) {
	query := s.db.
		Where("tenant_id = ? OR is_global = ?", tenantID, true).
		Where("lifecycle_state <> ?", models.LifecyclePermanentlyDeleted)
	if objectType != "" {
		query = query.Where("object_type = ?", objectType)
	}

	var props []models.PropertyDefinition
	if err := query.Order("object_type, name").Find(&props).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return props, nil
}

// CollisionResult reports whether a proposed name collides with an existing
// property in the tenant's scope or the global scope.
type CollisionResult struct {
	Collision        bool                       `json:"collision"`
	ExistingProperty *models.PropertyDefinition `json:"existing_property,omitempty"`
	Message          string                     `json:"message,omitempty"`
}

// CheckNameCollision looks for an active or previously-deleted property with
// the same name for this object type. A deleted match is reported distinctly
// from a live one.
func (s *Service) CheckNameCollision(name string, objectType models.ObjectType, tenantID uuid.UUID) (CollisionResult, error) {
	var existing models.PropertyDefinition
	err := s.db.
		Where("name = ? AND object_type = ?", name, objectType).
		Where("tenant_id = ? OR is_global = ?", tenantID, true).
		Where("lifecycle_state <> ?", models.LifecyclePermanentlyDeleted).
		Order("CASE WHEN lifecycle_state = 'ACTIVE' THEN 0 ELSE 1 END").
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return CollisionResult{Collision: false}, nil
		}
		return CollisionResult{}, apperrors.NewInternalError(err)
	}

	message := fmt.Sprintf("name '%s' is already in use on %s", name, objectType)
	if existing.LifecycleState != models.LifecycleActive {
		message = fmt.Sprintf("name '%s' was previously used and archived on %s", name, objectType)
	}
	return CollisionResult{Collision: true, ExistingProperty: &existing, Message: message}, nil
}

// CreatePropertyInput is the administrative request to define a new property
type CreatePropertyInput struct {
	Name             string              `json:"name"`
	DisplayLabel     string              `json:"display_label"`
	ObjectType       models.ObjectType   `json:"object_type"`
	DataType         models.DataType     `json:"data_type"`
	PropertyType     models.PropertyType `json:"property_type"`
	IsRequired       bool                `json:"is_required"`
	UniqueConstraint bool                `json:"unique_constraint"`
	IsGlobal         bool                `json:"is_global"`
}

// CreateProperty defines a new property after naming validation and collision
// checking, and writes the create audit entry in the same transaction.
func (s *Service) CreateProperty(input CreatePropertyInput, tenantID, userID uuid.UUID) (models.PropertyDefinition, error) {
	if _, err := storage.DescriptorFor(input.ObjectType); err != nil {
		return models.PropertyDefinition{}, apperrors.NewValidationError("object_type", fmt.Sprintf("unknown object type '%s'", input.ObjectType))
	}

	validation := naming.Validate(input.Name, input.PropertyType, input.DataType)
	if !validation.Valid {
		msg := strings.Join(validation.Errors, "; ")
		if len(validation.Suggestions) > 0 {
			msg += fmt.Sprintf(" (suggested: %s)", strings.Join(validation.Suggestions, ", "))
		}
		return models.PropertyDefinition{}, apperrors.NewValidationError("name", msg)
	}

	collision, err := s.CheckNameCollision(input.Name, input.ObjectType, tenantID)
	if err != nil {
		return models.PropertyDefinition{}, err
	}
	if collision.Collision {
		return models.PropertyDefinition{}, apperrors.NewConflictError(collision.Message)
	}

	prop := models.PropertyDefinition{
		ID:               uuid.New(),
		TenantID:         ownerTenant(tenantID, input.IsGlobal),
		IsGlobal:         input.IsGlobal,
		ObjectType:       input.ObjectType,
		Name:             input.Name,
		DisplayLabel:     input.DisplayLabel,
		DataType:         input.DataType,
		PropertyType:     input.PropertyType,
		IsRequired:       input.IsRequired,
		UniqueConstraint: input.UniqueConstraint,
		Modification: models.ModificationMetadata{
			Archivable:         input.PropertyType != models.PropertyTypeSystem,
			ReadOnlyDefinition: input.PropertyType == models.PropertyTypeSystem,
		},
		LifecycleState: models.LifecycleActive,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prop).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   prop.TenantID,
			PropertyID: prop.ID,
			ChangeType: models.ChangeTypeCreate,
			ChangedBy:  userID,
			Reason:     fmt.Sprintf("created %s property on %s", prop.PropertyType, prop.ObjectType),
			RiskLevel:  models.RiskLow,
		})
	})
	if err != nil {
		return models.PropertyDefinition{}, apperrors.NewInternalError(err)
	}
	return prop, nil
}

// ownerTenant resolves definition ownership: global definitions are
// platform-owned and carry no tenant.
func ownerTenant(tenantID uuid.UUID, isGlobal bool) *uuid.UUID {
	if isGlobal {
		return nil
	}
	t := tenantID
	return &t
}

// DependencySummaryFor aggregates the active dependency edges of a property.
// Purely informational, but a required input to the deletion guard.
func (s *Service) DependencySummaryFor(propertyID, tenantID uuid.UUID) (DependencySummary, error) {
	var summary DependencySummary
	err := s.db.Model(&models.PropertyDependency{}).
		Select("count(*) AS total_count, coalesce(sum(CASE WHEN is_critical THEN 1 ELSE 0 END), 0) AS critical_count").
		Where("source_property_id = ? AND is_active = ?", propertyID, true).
		Where("tenant_id = ? OR tenant_id IS NULL", tenantID).
		Scan(&summary).Error
	if err != nil {
		return DependencySummary{}, apperrors.NewInternalError(err)
	}
	return summary, nil
}

// EvaluateDeletionGuard loads the guard inputs and folds the check pipeline.
// The guard itself is read-only; it never mutates state and is safe to retry.
func (s *Service) EvaluateDeletionGuard(propertyID, tenantID uuid.UUID, op Operation) (GuardResult, error) {
	prop, err := s.GetProperty(propertyID, tenantID)
	if err != nil {
		return GuardResult{}, err
	}

	deps, err := s.DependencySummaryFor(propertyID, tenantID)
	if err != nil {
		return GuardResult{}, err
	}

	accessor, err := storage.AccessorFor(prop)
	if err != nil {
		return GuardResult{}, apperrors.NewInternalError(err)
	}
	populated, err := accessor.CountNonNull(s.db, prop, tenantID)
	if err != nil {
		return GuardResult{}, apperrors.NewInternalError(err)
	}

	return EvaluateGuard(GuardInput{
		Property:       prop,
		Operation:      op,
		Dependencies:   deps,
		PopulatedCount: populated,
		Now:            time.Now(),
	}), nil
}

// LifecycleRequest carries the caller's confirmation for a governed
// transition. ConfirmationName must echo the property name exactly.
type LifecycleRequest struct {
	Confirmed        bool   `json:"confirmed"`
	ConfirmationName string `json:"confirmation_name"`
	Reason           string `json:"reason"`
}

// SoftDeleteProperty moves an ACTIVE property into SOFT_DELETED after the
// guard and confirmation have both passed.
func (s *Service) SoftDeleteProperty(propertyID, tenantID, userID uuid.UUID, req LifecycleRequest) (models.PropertyDefinition, error) {
	return s.transition(propertyID, tenantID, userID, req, OperationDelete)
}

// ArchiveProperty moves a property into ARCHIVED and starts its retention
// window.
func (s *Service) ArchiveProperty(propertyID, tenantID, userID uuid.UUID, req LifecycleRequest) (models.PropertyDefinition, error) {
	return s.transition(propertyID, tenantID, userID, req, OperationArchive)
}

func (s *Service) transition(propertyID, tenantID, userID uuid.UUID, req LifecycleRequest, op Operation) (models.PropertyDefinition, error) {
	prop, err := s.GetProperty(propertyID, tenantID)
	if err != nil {
		return models.PropertyDefinition{}, err
	}

	guard, err := s.EvaluateDeletionGuard(propertyID, tenantID, op)
	if err != nil {
		return models.PropertyDefinition{}, err
	}
	if !guard.CanProceed {
		return models.PropertyDefinition{}, apperrors.NewPolicyError(strings.Join(guard.Blockers, "; "))
	}
	if guard.RequiresConfirmation && (!req.Confirmed || req.ConfirmationName != prop.Name) {
		return models.PropertyDefinition{}, apperrors.NewConfirmationRequiredError(prop.Name)
	}

	now := time.Now()
	var changeType models.ChangeType
	switch op {
	case OperationDelete:
		if prop.LifecycleState != models.LifecycleActive {
			return models.PropertyDefinition{}, apperrors.NewConflictError(
				fmt.Sprintf("cannot delete a property in state %s", prop.LifecycleState))
		}
		prop.LifecycleState = models.LifecycleSoftDeleted
		prop.DeletedAt = &now
		changeType = models.ChangeTypeSoftDelete
	case OperationArchive:
		if prop.LifecycleState != models.LifecycleActive && prop.LifecycleState != models.LifecycleSoftDeleted {
			return models.PropertyDefinition{}, apperrors.NewConflictError(
				fmt.Sprintf("cannot archive a property in state %s", prop.LifecycleState))
		}
		retentionUntil := now.AddDate(s.cfg.RetentionYears, 0, 0)
		prop.LifecycleState = models.LifecycleArchived
		prop.ArchivedAt = &now
		prop.RetentionUntil = &retentionUntil
		changeType = models.ChangeTypeArchive
	default:
		return models.PropertyDefinition{}, apperrors.NewBadRequestError(fmt.Sprintf("unknown operation '%s'", op))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&prop).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   prop.TenantID,
			PropertyID: prop.ID,
			ChangeType: changeType,
			ChangedBy:  userID,
			Reason:     req.Reason,
			RiskLevel:  models.RiskMedium,
		})
	})
	if err != nil {
		return models.PropertyDefinition{}, apperrors.NewInternalError(err)
	}
	return prop, nil
}

// RequestRestoration asks for a soft-deleted or archived property back.
// Soft-deleted properties are restored instantly; archived ones wait for an
// administrator under the 24-hour restoration SLA.
func (s *Service) RequestRestoration(propertyID, tenantID, userID uuid.UUID, reason string) (models.PropertyDefinition, error) {
	prop, err := s.GetProperty(propertyID, tenantID)
	if err != nil {
		return models.PropertyDefinition{}, err
	}

	now := time.Now()
	switch prop.LifecycleState {
	case models.LifecycleSoftDeleted:
		prop.LifecycleState = models.LifecycleActive
		prop.DeletedAt = nil
		prop.RestorationRequestedAt = nil
		prop.RestorationApproved = false
	case models.LifecycleArchived:
		prop.RestorationRequestedAt = &now
		prop.RestorationApproved = false
	default:
		return models.PropertyDefinition{}, apperrors.NewConflictError(
			fmt.Sprintf("cannot restore a property in state %s", prop.LifecycleState))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&prop).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   prop.TenantID,
			PropertyID: prop.ID,
			ChangeType: models.ChangeTypeRestoreRequest,
			ChangedBy:  userID,
			Reason:     reason,
			RiskLevel:  models.RiskLow,
		})
	})
	if err != nil {
		return models.PropertyDefinition{}, apperrors.NewInternalError(err)
	}
	return prop, nil
}

// ApproveRestoration completes a pending restoration of an archived property
func (s *Service) ApproveRestoration(propertyID, tenantID, userID uuid.UUID) (models.PropertyDefinition, error) {
	prop, err := s.GetProperty(propertyID, tenantID)
	if err != nil {
		return models.PropertyDefinition{}, err
	}
	if prop.LifecycleState != models.LifecycleArchived || prop.RestorationRequestedAt == nil {
		return models.PropertyDefinition{}, apperrors.NewConflictError("no pending restoration request for this property")
	}

	prop.LifecycleState = models.LifecycleActive
	prop.ArchivedAt = nil
	prop.RetentionUntil = nil
	prop.DeletedAt = nil
	prop.RestorationApproved = true

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&prop).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   prop.TenantID,
			PropertyID: prop.ID,
			ChangeType: models.ChangeTypeRestoreApprove,
			ChangedBy:  userID,
			Reason:     "restoration approved",
			RiskLevel:  models.RiskMedium,
		})
	})
	if err != nil {
		return models.PropertyDefinition{}, apperrors.NewInternalError(err)
	}
	return prop, nil
}

// ChangePropertyType retypes a property. Widening conversions go through
// directly; narrowing ones demand that the stored values were exported and
// cleared first.
func (s *Service) ChangePropertyType(propertyID, tenantID, userID uuid.UUID, newType models.DataType, reason string) (models.PropertyDefinition, error) {
	prop, err := s.GetProperty(propertyID, tenantID)
	if err != nil {
		return models.PropertyDefinition{}, err
	}
	if prop.PropertyType == models.PropertyTypeSystem || prop.Modification.ReadOnlyDefinition {
		return models.PropertyDefinition{}, apperrors.NewPolicyError("this property definition cannot be retyped")
	}
	if prop.DataType == newType {
		return models.PropertyDefinition{}, apperrors.NewBadRequestError("property already has this data type")
	}

	if !IsSafeConversion(prop.DataType, newType) {
		accessor, err := storage.AccessorFor(prop)
		if err != nil {
			return models.PropertyDefinition{}, apperrors.NewInternalError(err)
		}
		populated, err := accessor.CountNonNull(s.db, prop, tenantID)
		if err != nil {
			return models.PropertyDefinition{}, apperrors.NewInternalError(err)
		}
		if populated > 0 {
			return models.PropertyDefinition{}, apperrors.NewConflictError(
				fmt.Sprintf("converting %s to %s can lose data; export and clear the %d stored values first",
					prop.DataType, newType, populated))
		}
	}

	oldType := prop.DataType
	prop.DataType = newType
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&prop).Error; err != nil {
			return err
		}
		return s.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   prop.TenantID,
			PropertyID: prop.ID,
			ChangeType: models.ChangeTypeTypeChange,
			ChangedBy:  userID,
			Reason:     fmt.Sprintf("%s -> %s: %s", oldType, newType, reason),
			RiskLevel:  models.RiskMedium,
		})
	})
	if err != nil {
		return models.PropertyDefinition{}, apperrors.NewInternalError(err)
	}
	return prop, nil
}

// ListDependencies returns the active dependency edges for a property
func (s *Service) ListDependencies(propertyID, tenantID uuid.UUID) ([]models.PropertyDependency, error) {
	var deps []models.PropertyDependency
	err := s.db.
		Where("source_property_id = ? AND is_active = ?", propertyID, true).
		Where("tenant_id = ? OR tenant_id IS NULL", tenantID).
		Order("is_critical DESC, asset_type, asset_name").
		Find(&deps).Error
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return deps, nil
}
