// Package storage maps property definitions onto the business-record tables
// and reads or clears the actual field values.
//
// Standard, protected and system properties live in fixed columns of the
// per-object tables; custom properties live in a semi-structured JSONB
// document column. The two layouts sit behind one ValueAccessor interface so
// the deletion guard and export-clear helper never branch on tier themselves.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tailtown/platform/internal/models"
	"github.com/tailtown/platform/internal/naming"
	"github.com/tailtown/platform/internal/security"
)

// StorageDescriptor locates the value storage for one business object type
type StorageDescriptor struct {
	Table             string
	CustomFieldColumn string
}

// descriptors is the exhaustive object-type lookup, built once. Adding a new
// object type without an entry here fails loudly instead of concatenating
// table names at call sites.
var descriptors = map[models.ObjectType]StorageDescriptor{
	models.ObjectTypePet:     {Table: "pets", CustomFieldColumn: "custom_fields"},
	models.ObjectTypeOwner:   {Table: "owners", CustomFieldColumn: "custom_fields"},
	models.ObjectTypeBooking: {Table: "bookings", CustomFieldColumn: "custom_fields"},
	models.ObjectTypeStaff:   {Table: "staff_members", CustomFieldColumn: "custom_fields"},
	models.ObjectTypePayment: {Table: "payments", CustomFieldColumn: "custom_fields"},
}

// DescriptorFor resolves the storage location for an object type
func DescriptorFor(objectType models.ObjectType) (StorageDescriptor, error) {
	desc, ok := descriptors[objectType]
	if !ok {
		return StorageDescriptor{}, fmt.Errorf("no storage descriptor for object type '%s'", objectType)
	}
	return desc, nil
}

// ValueRow is one non-null value with its owning record id and timestamps
type ValueRow struct {
	RecordID  uuid.UUID `json:"record_id" gorm:"column:record_id"`
	Value     string    `json:"value" gorm:"column:value"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// ValueAccessor reads and clears the stored values of one property. All
// queries are scoped to the calling tenant.
type ValueAccessor interface {
	// CountNonNull counts business records holding a non-null value
	CountNonNull(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) (int64, error)
	// ReadValues returns every non-null value with record id and timestamps
	ReadValues(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) ([]ValueRow, error)
	// Clear nulls out (or removes the key of) every matching value and
	// returns the affected record count. Callers run it inside a transaction.
	Clear(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) (int64, error)
}

// AccessorFor selects the accessor implementation by property tier
func AccessorFor(prop models.PropertyDefinition) (ValueAccessor, error) {
	desc, err := DescriptorFor(prop.ObjectType)
	if err != nil {
		return nil, err
	}
	if prop.PropertyType == models.PropertyTypeCustom {
		return &documentAccessor{desc: desc}, nil
	}
	return &columnAccessor{desc: desc}, nil
}

// columnAccessor serves properties stored in fixed columns
type columnAccessor struct {
	desc StorageDescriptor
}

func (a *columnAccessor) identifiers(prop models.PropertyDefinition) (table, column string, err error) {
	table, err = security.SafeIdentifier(a.desc.Table)
	if err != nil {
		return "", "", fmt.Errorf("bad table name: %w", err)
	}
	column, err = security.SafeIdentifier(naming.SnakeCase(prop.Name))
	if err != nil {
		return "", "", fmt.Errorf("bad column name for property %s: %w", prop.Name, err)
	}
	return table, column, nil
}

func (a *columnAccessor) CountNonNull(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) (int64, error) {
	table, column, err := a.identifiers(prop)
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE tenant_id = ? AND %s IS NOT NULL", table, column)
	if err := db.Raw(query, tenantID).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count values for %s: %w", prop.Name, err)
	}
	return count, nil
}

func (a *columnAccessor) ReadValues(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) ([]ValueRow, error) {
	table, column, err := a.identifiers(prop)
	if err != nil {
		return nil, err
	}

	var rows []ValueRow
	query := fmt.Sprintf(
		"SELECT id AS record_id, CAST(%s AS TEXT) AS value, created_at, updated_at FROM %s WHERE tenant_id = ? AND %s IS NOT NULL ORDER BY created_at",
		column, table, column)
	if err := db.Raw(query, tenantID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read values for %s: %w", prop.Name, err)
	}
	return rows, nil
}

func (a *columnAccessor) Clear(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) (int64, error) {
	table, column, err := a.identifiers(prop)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE tenant_id = ? AND %s IS NOT NULL", table, column, column)
	res := db.Exec(query, tenantID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear values for %s: %w", prop.Name, res.Error)
	}
	return res.RowsAffected, nil
}

// documentAccessor serves custom properties stored in the JSONB document
// column. The property name is always bound as a parameter, never
// interpolated.
type documentAccessor struct {
	desc StorageDescriptor
}

func (a *documentAccessor) identifiers() (table, column string, err error) {
	table, err = security.SafeIdentifier(a.desc.Table)
	if err != nil {
		return "", "", fmt.Errorf("bad table name: %w", err)
	}
	column, err = security.SafeIdentifier(a.desc.CustomFieldColumn)
	if err != nil {
		return "", "", fmt.Errorf("bad document column name: %w", err)
	}
	return table, column, nil
}

func (a *documentAccessor) CountNonNull(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) (int64, error) {
	table, column, err := a.identifiers()
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE tenant_id = ? AND %s ->> ? IS NOT NULL", table, column)
	if err := db.Raw(query, tenantID, prop.Name).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count values for %s: %w", prop.Name, err)
	}
	return count, nil
}

func (a *documentAccessor) ReadValues(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) ([]ValueRow, error) {
	table, column, err := a.identifiers()
	if err != nil {
		return nil, err
	}

	var rows []ValueRow
	query := fmt.Sprintf(
		"SELECT id AS record_id, %s ->> ? AS value, created_at, updated_at FROM %s WHERE tenant_id = ? AND %s ->> ? IS NOT NULL ORDER BY created_at",
		column, table, column)
	if err := db.Raw(query, prop.Name, tenantID, prop.Name).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read values for %s: %w", prop.Name, err)
	}
	return rows, nil
}

func (a *documentAccessor) Clear(db *gorm.DB, prop models.PropertyDefinition, tenantID uuid.UUID) (int64, error) {
	table, column, err := a.identifiers()
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = %s - ?::text WHERE tenant_id = ? AND %s ->> ? IS NOT NULL",
		table, column, column, column)
	res := db.Exec(query, prop.Name, tenantID, prop.Name)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear values for %s: %w", prop.Name, res.Error)
	}
	return res.RowsAffected, nil
}
