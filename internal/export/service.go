// Package export produces CSV snapshots of property values and clears them
// once the caller has confirmed the destructive step.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tailtown/platform/internal/audit"
	apperrors "github.com/tailtown/platform/internal/errors"
	"github.com/tailtown/platform/internal/governance"
	"github.com/tailtown/platform/internal/models"
	"github.com/tailtown/platform/internal/storage"
)

// Service implements the export-then-clear workflow used before lossy type
// changes and before archival of populated properties.
type Service struct {
	db         *gorm.DB
	governance *governance.Service
	audit      *audit.Recorder
}

func NewService(db *gorm.DB, gov *governance.Service, recorder *audit.Recorder) *Service {
	return &Service{db: db, governance: gov, audit: recorder}
}

// Export is a CSV snapshot of the non-null values stored under one property
type Export struct {
	PropertyID uuid.UUID `json:"property_id"`
	Filename   string    `json:"filename"`
	RowCount   int       `json:"row_count"`
	Data       []byte    `json:"-"`
}

// ExportData reads every populated value for the property within the tenant's
// scope and renders it as CSV. Reading never mutates anything, so the export
// is audited at low risk.
func (s *Service) ExportData(propertyID, tenantID, userID uuid.UUID) (Export, error) {
	prop, err := s.governance.GetProperty(propertyID, tenantID)
	if err != nil {
		return Export{}, err
	}

	accessor, err := storage.AccessorFor(prop)
	if err != nil {
		return Export{}, apperrors.NewInternalError(err)
	}
	rows, err := accessor.ReadValues(s.db, prop, tenantID)
	if err != nil {
		return Export{}, apperrors.NewInternalError(err)
	}

	data, err := renderCSV(rows)
	if err != nil {
		return Export{}, apperrors.NewInternalError(err)
	}

	err = s.audit.Record(nil, models.PropertyChangeAuditEntry{
		TenantID:             prop.TenantID,
		PropertyID:           prop.ID,
		ChangeType:           models.ChangeTypeExport,
		ChangedBy:            userID,
		Reason:               fmt.Sprintf("exported values for %s.%s", prop.ObjectType, prop.Name),
		AffectedRecordsCount: int64(len(rows)),
		RiskLevel:            models.RiskLow,
	})
	if err != nil {
		return Export{}, apperrors.NewInternalError(err)
	}

	filename := fmt.Sprintf("%s_%s_%s.csv", prop.ObjectType, prop.Name, time.Now().Format("20060102T150405"))
	return Export{
		PropertyID: prop.ID,
		Filename:   filename,
		RowCount:   len(rows),
		Data:       data,
	}, nil
}

// renderCSV shapes value rows into the export file: a header row followed by
// one line per stored value, timestamps in RFC 3339.
func renderCSV(rows []storage.ValueRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"record_id", "value", "created_at", "updated_at"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.RecordID.String(),
			row.Value,
			row.CreatedAt.Format(time.RFC3339),
			row.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ClearRequest confirms the destructive half of export-then-clear
type ClearRequest struct {
	Confirmed        bool   `json:"confirmed"`
	ConfirmationName string `json:"confirmation_name"`
	Reason           string `json:"reason"`
}

// confirmationSatisfied gates the destructive half: the caller must both set
// the confirmed flag and retype the exact property name.
func confirmationSatisfied(req ClearRequest, propertyName string) bool {
	return req.Confirmed && req.ConfirmationName == propertyName
}

// ClearResult reports how many stored values were removed
type ClearResult struct {
	PropertyID   uuid.UUID `json:"property_id"`
	ClearedCount int64     `json:"cleared_count"`
}

// ClearData nulls out every value stored under the property for this tenant.
// An unconfirmed request returns the confirmation challenge without touching
// any data.
func (s *Service) ClearData(propertyID, tenantID, userID uuid.UUID, req ClearRequest) (ClearResult, error) {
	prop, err := s.governance.GetProperty(propertyID, tenantID)
	if err != nil {
		return ClearResult{}, err
	}
	if !confirmationSatisfied(req, prop.Name) {
		return ClearResult{}, apperrors.NewConfirmationRequiredError(prop.Name)
	}

	accessor, err := storage.AccessorFor(prop)
	if err != nil {
		return ClearResult{}, apperrors.NewInternalError(err)
	}

	var cleared int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		cleared, err = accessor.Clear(tx, prop, tenantID)
		if err != nil {
			return err
		}
		return s.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:             prop.TenantID,
			PropertyID:           prop.ID,
			ChangeType:           models.ChangeTypeClear,
			ChangedBy:            userID,
			Reason:               req.Reason,
			AffectedRecordsCount: cleared,
			RiskLevel:            models.RiskHigh,
		})
	})
	if err != nil {
		return ClearResult{}, apperrors.NewInternalError(err)
	}

	return ClearResult{PropertyID: prop.ID, ClearedCount: cleared}, nil
}
