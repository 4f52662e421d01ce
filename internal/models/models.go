// Package models contains the core Tailtown data structures
// These models describe the governance metadata layer: what custom fields
// exist, how safely they can change shape, and how a tenant's overall data
// schema version is advanced or rolled back.
package models

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SYSTEM MODELS
// =============================================================================

// Tenant represents a customer/business in the multi-tenant system
type Tenant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Domain    string    `json:"domain" gorm:"size:255"`
	Settings  JSONB     `json:"settings" gorm:"type:jsonb;default:'{}'"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Users []User `json:"users,omitempty" gorm:"foreignKey:TenantID"`
}

// User represents a system user; only used for audit attribution here,
// authentication itself lives in an external service.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	TenantID     uuid.UUID  `json:"tenant_id" gorm:"type:uuid;index"`
	Email        string     `json:"email" gorm:"not null;size:255"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	FirstName    string     `json:"first_name" gorm:"size:100"`
	LastName     string     `json:"last_name" gorm:"size:100"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// =============================================================================
// PROPERTY GOVERNANCE MODELS
// =============================================================================

// PropertyType is the trust tier of a property definition. The tier is fixed
// at creation and never changes.
type PropertyType string

const (
	PropertyTypeSystem    PropertyType = "system"
	PropertyTypeStandard  PropertyType = "standard"
	PropertyTypeProtected PropertyType = "protected"
	PropertyTypeCustom    PropertyType = "custom"
)

// DataType enumerates the value shapes a property can hold
type DataType string

const (
	DataTypeDate         DataType = "date"
	DataTypeDatetime     DataType = "datetime"
	DataTypeText         DataType = "text"
	DataTypeNumber       DataType = "number"
	DataTypeCurrency     DataType = "currency"
	DataTypeBoolean      DataType = "boolean"
	DataTypeSingleSelect DataType = "single_select"
	DataTypeMultiSelect  DataType = "multi_select"
	DataTypeFormula      DataType = "formula"
	DataTypeRollup       DataType = "rollup"
)

// ObjectType names the business entity a property attaches to
type ObjectType string

const (
	ObjectTypePet     ObjectType = "pet"
	ObjectTypeOwner   ObjectType = "owner"
	ObjectTypeBooking ObjectType = "booking"
	ObjectTypeStaff   ObjectType = "staff_member"
	ObjectTypePayment ObjectType = "payment"
)

// LifecycleState tracks a property through its one-directional lifecycle:
// ACTIVE -> SOFT_DELETED -> ARCHIVED -> PERMANENTLY_DELETED
type LifecycleState string

const (
	LifecycleActive             LifecycleState = "ACTIVE"
	LifecycleSoftDeleted        LifecycleState = "SOFT_DELETED"
	LifecycleArchived           LifecycleState = "ARCHIVED"
	LifecyclePermanentlyDeleted LifecycleState = "PERMANENTLY_DELETED"
)

// ModificationMetadata carries the per-definition mutation flags
type ModificationMetadata struct {
	Archivable         bool `json:"archivable" gorm:"column:mod_archivable;default:true"`
	ReadOnlyDefinition bool `json:"read_only_definition" gorm:"column:mod_read_only_definition;default:false"`
}

// PropertyDefinition is a tenant-scoped (or global) field definition attached
// to a business object type.
type PropertyDefinition struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	TenantID     *uuid.UUID   `json:"tenant_id" gorm:"type:uuid;index"`
	IsGlobal     bool         `json:"is_global" gorm:"default:false;index"`
	ObjectType   ObjectType   `json:"object_type" gorm:"not null;size:30;index"`
	Name         string       `json:"name" gorm:"not null;size:100;index"`
	DisplayLabel string       `json:"display_label" gorm:"size:255"`
	DataType     DataType     `json:"data_type" gorm:"not null;size:30"`
	PropertyType PropertyType `json:"property_type" gorm:"not null;size:20"`

	IsRequired       bool                 `json:"is_required" gorm:"default:false"`
	UniqueConstraint bool                 `json:"unique_constraint" gorm:"default:false"`
	Modification     ModificationMetadata `json:"modification_metadata" gorm:"embedded"`
	UsedIn           UsageIndex           `json:"used_in" gorm:"type:jsonb;default:'{}'"`

	LifecycleState         LifecycleState `json:"lifecycle_state" gorm:"not null;size:25;default:'ACTIVE';index"`
	DeletedAt              *time.Time     `json:"deleted_at"`
	ArchivedAt             *time.Time     `json:"archived_at" gorm:"index"`
	RetentionUntil         *time.Time     `json:"retention_until" gorm:"index"`
	RestorationRequestedAt *time.Time     `json:"restoration_requested_at"`
	RestorationApproved    bool           `json:"restoration_approved" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tenant       *Tenant              `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Dependencies []PropertyDependency `json:"dependencies,omitempty" gorm:"foreignKey:SourcePropertyID"`
}

// TableName returns the table name for PropertyDefinition
func (PropertyDefinition) TableName() string {
	return "property_definitions"
}

// UsageIndex records which assets reference the property; the counts drive
// the asset-usage deletion check.
type UsageIndex struct {
	Workflows       []string `json:"workflows,omitempty"`
	Validations     []string `json:"validations,omitempty"`
	Forms           []string `json:"forms,omitempty"`
	Reports         []string `json:"reports,omitempty"`
	APIIntegrations []string `json:"api_integrations,omitempty"`
}

// Total returns the summed asset reference count
func (u UsageIndex) Total() int {
	return len(u.Workflows) + len(u.Validations) + len(u.Forms) + len(u.Reports) + len(u.APIIntegrations)
}

// AssetType classifies what kind of asset depends on a property
type AssetType string

const (
	AssetTypeWorkflow    AssetType = "workflow"
	AssetTypeValidation  AssetType = "validation"
	AssetTypeForm        AssetType = "form"
	AssetTypeReport      AssetType = "report"
	AssetTypeIntegration AssetType = "api_integration"
	AssetTypeProperty    AssetType = "property"
)

// PropertyDependency is a directed edge from a property to an asset that
// references it. Critical edges break functionality if the source is removed.
type PropertyDependency struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	TenantID         *uuid.UUID `json:"tenant_id" gorm:"type:uuid;index"`
	SourcePropertyID uuid.UUID  `json:"source_property_id" gorm:"type:uuid;index;not null"`
	AssetType        AssetType  `json:"asset_type" gorm:"not null;size:30"`
	AssetID          uuid.UUID  `json:"asset_id" gorm:"type:uuid;not null"`
	AssetName        string     `json:"asset_name" gorm:"size:255"`
	IsCritical       bool       `json:"is_critical" gorm:"default:false"`
	IsActive         bool       `json:"is_active" gorm:"default:true;index"`
	CreatedAt        time.Time  `json:"created_at"`

	// Relations
	SourceProperty *PropertyDefinition `json:"source_property,omitempty" gorm:"foreignKey:SourcePropertyID"`
}

// TableName returns the table name for PropertyDependency
func (PropertyDependency) TableName() string {
	return "property_dependencies"
}

// RiskLevel grades audit entries for compliance review
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ChangeType names the mutating operation recorded in the audit ledger
type ChangeType string

const (
	ChangeTypeCreate          ChangeType = "create"
	ChangeTypeUpdate          ChangeType = "update"
	ChangeTypeTypeChange      ChangeType = "type_change"
	ChangeTypeExport          ChangeType = "export"
	ChangeTypeClear           ChangeType = "clear"
	ChangeTypeSoftDelete      ChangeType = "soft_delete"
	ChangeTypeArchive         ChangeType = "archive"
	ChangeTypePermanentDelete ChangeType = "permanent_delete"
	ChangeTypeRestoreRequest  ChangeType = "restore_request"
	ChangeTypeRestoreApprove  ChangeType = "restore_approve"
)

// PropertyChangeAuditEntry is append-only: created by every mutating
// operation, never updated or deleted.
type PropertyChangeAuditEntry struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	TenantID             *uuid.UUID `json:"tenant_id" gorm:"type:uuid;index"`
	PropertyID           uuid.UUID  `json:"property_id" gorm:"type:uuid;index;not null"`
	ChangeType           ChangeType `json:"change_type" gorm:"not null;size:30"`
	ChangedBy            uuid.UUID  `json:"changed_by" gorm:"type:uuid"`
	ChangedDate          time.Time  `json:"changed_date" gorm:"autoCreateTime;index"`
	Reason               string     `json:"reason"`
	AffectedRecordsCount int64      `json:"affected_records_count" gorm:"default:0"`
	RiskLevel            RiskLevel  `json:"risk_level" gorm:"not null;size:10;default:'low'"`
}

// TableName returns the table name for PropertyChangeAuditEntry
func (PropertyChangeAuditEntry) TableName() string {
	return "property_change_audit"
}

// DeletionLog records each physically purged property for compliance
type DeletionLog struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID     *uuid.UUID `json:"tenant_id" gorm:"type:uuid;index"`
	PropertyID   uuid.UUID  `json:"property_id" gorm:"type:uuid;not null;index"`
	PropertyName string     `json:"property_name" gorm:"size:100"`
	ObjectType   ObjectType `json:"object_type" gorm:"size:30"`
	ArchivedAt   *time.Time `json:"archived_at"`
	DeletedAt    time.Time  `json:"deleted_at" gorm:"not null;autoCreateTime;index"`
	Reason       string     `json:"reason" gorm:"not null;size:50"`
}

// TableName returns the table name for DeletionLog
func (DeletionLog) TableName() string {
	return "deletion_logs"
}

// Deletion reason constants
const (
	DeleteReasonRetentionExpired = "retention_expired"
	DeleteReasonManual           = "manual_deletion"
)

// =============================================================================
// SCHEMA VERSION MODELS
// =============================================================================

// MigrationStatus tracks the state of a tenant's schema migration
type MigrationStatus string

const (
	MigrationNone       MigrationStatus = "none"
	MigrationPending    MigrationStatus = "pending"
	MigrationInProgress MigrationStatus = "in_progress"
	MigrationCompleted  MigrationStatus = "completed"
	MigrationRolledBack MigrationStatus = "rolled_back"
)

// SchemaVersion is a platform-owned catalog entry. CompatibleWithVersions
// lists the predecessor versions this version knows how to upgrade from; it
// is not a transitive reachability set.
type SchemaVersion struct {
	ID                     uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	VersionNumber          int64       `json:"version_number" gorm:"uniqueIndex;not null"`
	VersionName            string      `json:"version_name" gorm:"not null;size:100"`
	CompatibleWithVersions Int64Array  `json:"compatible_with_versions" gorm:"type:jsonb;default:'[]'"`
	BreakingChanges        StringArray `json:"breaking_changes" gorm:"type:jsonb;default:'[]'"`
	RequiresAppVersion     string      `json:"requires_app_version" gorm:"size:20"`
	IsActive               bool        `json:"is_active" gorm:"default:true"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// TableName returns the table name for SchemaVersion
func (SchemaVersion) TableName() string {
	return "schema_versions"
}

// IsCompatibleFrom reports whether this version can be reached by a direct
// upgrade from the given predecessor version.
func (v SchemaVersion) IsCompatibleFrom(current int64) bool {
	for _, c := range v.CompatibleWithVersions {
		if c == current {
			return true
		}
	}
	return false
}

// TenantSchemaVersion is one row per tenant, exclusively mutated by that
// tenant's upgrade/rollback flow.
type TenantSchemaVersion struct {
	ID                    uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	TenantID              uuid.UUID       `json:"tenant_id" gorm:"type:uuid;uniqueIndex;not null"`
	CurrentSchemaVersion  int64           `json:"current_schema_version" gorm:"not null;default:1"`
	TargetSchemaVersion   *int64          `json:"target_schema_version"`
	PreviousSchemaVersion int64           `json:"previous_schema_version" gorm:"default:0"`
	MigrationStatus       MigrationStatus `json:"migration_status" gorm:"not null;size:20;default:'none'"`
	MigrationScheduledAt  *time.Time      `json:"migration_scheduled_at"`
	RollbackEnabled       bool            `json:"rollback_enabled" gorm:"default:false"`
	RollbackWindowUntil   *time.Time      `json:"rollback_window_until"`
	UseNewSchema          bool            `json:"use_new_schema" gorm:"default:false"`
	RolloutPriority       int             `json:"rollout_priority" gorm:"default:100"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`

	// Relations
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for TenantSchemaVersion
func (TenantSchemaVersion) TableName() string {
	return "tenant_schema_versions"
}
