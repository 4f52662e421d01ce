// Package audit provides the append-only property change ledger
package audit

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tailtown/platform/internal/models"
)

// Recorder writes audit entries. Entries are append-only: nothing in the
// codebase updates or deletes a row once written.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a new audit recorder
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one entry using the given handle, which may be a transaction
// so the entry commits or rolls back with the mutation it describes.
func (r *Recorder) Record(tx *gorm.DB, entry models.PropertyChangeAuditEntry) error {
	if tx == nil {
		tx = r.db
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// ListForProperty returns the ledger for one property, newest first,
// scoped to the tenant (or global entries).
func (r *Recorder) ListForProperty(propertyID, tenantID uuid.UUID) ([]models.PropertyChangeAuditEntry, error) {
	var entries []models.PropertyChangeAuditEntry
	err := r.db.
		Where("property_id = ?", propertyID).
		Where("tenant_id = ? OR tenant_id IS NULL", tenantID).
		Order("changed_date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
