// Package retention runs the archival sweep and the permanent-deletion job
// that together enforce the platform's data retention policy.
package retention

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tailtown/platform/internal/audit"
	"github.com/tailtown/platform/internal/models"
)

// Config controls the timing of the two retention jobs
type Config struct {
	// RetentionYears is how long an archived property stays recoverable
	RetentionYears int
	// GraceDays is how long a soft-deleted property waits before the sweep
	// archives it.
	GraceDays int
	// BatchCap limits how many properties a single purge run may delete
	BatchCap int
}

// DefaultConfig returns the compliance defaults
func DefaultConfig() Config {
	return Config{RetentionYears: 7, GraceDays: 30, BatchCap: 100}
}

// Service runs the scheduled retention jobs
type Service struct {
	db    *gorm.DB
	audit *audit.Recorder
	cfg   Config
}

func NewService(db *gorm.DB, recorder *audit.Recorder, cfg Config) *Service {
	if cfg.RetentionYears <= 0 {
		cfg.RetentionYears = DefaultConfig().RetentionYears
	}
	if cfg.GraceDays <= 0 {
		cfg.GraceDays = DefaultConfig().GraceDays
	}
	if cfg.BatchCap <= 0 {
		cfg.BatchCap = DefaultConfig().BatchCap
	}
	return &Service{db: db, audit: recorder, cfg: cfg}
}

// SweepResult summarizes one archival sweep run
type SweepResult struct {
	Archived int       `json:"archived"`
	Failed   int       `json:"failed"`
	RanAt    time.Time `json:"ran_at"`
}

// RunArchiveSweep moves soft-deleted properties whose grace period has lapsed
// into ARCHIVED and stamps their retention window.
func (s *Service) RunArchiveSweep() (SweepResult, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -s.cfg.GraceDays)
	result := SweepResult{RanAt: now}

	var props []models.PropertyDefinition
	err := s.db.
		Where("lifecycle_state = ?", models.LifecycleSoftDeleted).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("deleted_at ASC").
		Find(&props).Error
	if err != nil {
		return result, fmt.Errorf("archive sweep: enumerate soft-deleted properties: %w", err)
	}

	for i := range props {
		prop := &props[i]
		retentionUntil := now.AddDate(s.cfg.RetentionYears, 0, 0)
		prop.LifecycleState = models.LifecycleArchived
		prop.ArchivedAt = &now
		prop.RetentionUntil = &retentionUntil

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(prop).Error; err != nil {
				return err
			}
			return s.audit.Record(tx, models.PropertyChangeAuditEntry{
				TenantID:   prop.TenantID,
				PropertyID: prop.ID,
				ChangeType: models.ChangeTypeArchive,
				ChangedBy:  uuid.Nil,
				Reason:     fmt.Sprintf("archival sweep: soft-deleted %d+ days", s.cfg.GraceDays),
				RiskLevel:  models.RiskMedium,
			})
		})
		if err != nil {
			log.Printf("archive sweep: failed to archive property %s: %v", prop.ID, err)
			result.Failed++
			continue
		}
		result.Archived++
	}

	log.Printf("archive sweep complete: archived=%d failed=%d", result.Archived, result.Failed)
	return result, nil
}

// TenantSummary is the per-tenant accounting of one purge run
type TenantSummary struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// RetentionStats describes the archived population at the end of a purge run
type RetentionStats struct {
	Expired             int64      `json:"expired"`
	ExpiringSoon        int64      `json:"expiring_soon"`
	ExpiringThisYear    int64      `json:"expiring_this_year"`
	LongTerm            int64      `json:"long_term"`
	OldestArchivedAt    *time.Time `json:"oldest_archived_at,omitempty"`
	PendingRestorations int64      `json:"pending_restorations"`
	EstimatedStorageKB  int64      `json:"estimated_storage_kb"`
}

// JobResult is the full report of one permanent-deletion run
type JobResult struct {
	Success             bool                     `json:"success"`
	StartedAt           time.Time                `json:"started_at"`
	DurationSeconds     float64                  `json:"duration_seconds"`
	PropertiesProcessed int                      `json:"properties_processed"`
	PropertiesDeleted   int                      `json:"properties_deleted"`
	PropertiesFailed    int                      `json:"properties_failed"`
	CapReached          bool                     `json:"cap_reached"`
	Errors              []string                 `json:"errors,omitempty"`
	ByTenant            map[string]TenantSummary `json:"by_tenant"`
	Stats               RetentionStats           `json:"stats"`
	Error               string                   `json:"error,omitempty"`
}

// RunPermanentDeletionJob purges archived properties whose retention window
// has fully elapsed, oldest first, up to the batch cap. Each property is
// deleted in its own transaction so one failure never aborts the run.
func (s *Service) RunPermanentDeletionJob() JobResult {
	started := time.Now()
	result := JobResult{
		StartedAt: started,
		ByTenant:  map[string]TenantSummary{},
	}

	var candidates []models.PropertyDefinition
	err := s.db.
		Where("lifecycle_state = ?", models.LifecycleArchived).
		Where("retention_until IS NOT NULL AND retention_until < ?", started).
		Where("restoration_requested_at IS NULL").
		Order("archived_at ASC").
		Limit(s.cfg.BatchCap + 1).
		Find(&candidates).Error
	if err != nil {
		result.Error = fmt.Sprintf("enumerate expired properties: %v", err)
		result.DurationSeconds = time.Since(started).Seconds()
		return result
	}

	candidates, result.CapReached = ApplyCap(candidates, s.cfg.BatchCap)
	result.PropertiesProcessed = len(candidates)

	for i := range candidates {
		prop := candidates[i]
		key := tenantKey(prop.TenantID)
		summary := result.ByTenant[key]

		if !PurgeEligible(prop, started) {
			log.Printf("permanent deletion: skipping %s, no longer eligible", prop.ID)
			continue
		}

		if err := s.purgeOne(prop); err != nil {
			log.Printf("permanent deletion: property %s (%s.%s): %v", prop.ID, prop.ObjectType, prop.Name, err)
			result.Errors = append(result.Errors, fmt.Sprintf("property %s: %v", prop.ID, err))
			summary.Failed++
			result.PropertiesFailed++
		} else {
			log.Printf("COMPLIANCE permanent deletion: tenant=%s property=%s name=%s archived_at=%v",
				key, prop.ID, prop.Name, prop.ArchivedAt)
			summary.Deleted++
			result.PropertiesDeleted++
		}
		result.ByTenant[key] = summary
	}

	stats, err := s.collectStats(started)
	if err != nil {
		log.Printf("permanent deletion: stats collection failed: %v", err)
	} else {
		result.Stats = stats
	}

	result.Success = result.PropertiesFailed == 0
	result.DurationSeconds = time.Since(started).Seconds()
	return result
}

func (s *Service) purgeOne(prop models.PropertyDefinition) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.PropertyDefinition{}).
			Where("id = ?", prop.ID).
			Update("lifecycle_state", models.LifecyclePermanentlyDeleted).Error
		if err != nil {
			return err
		}

		entry := models.DeletionLog{
			TenantID:     prop.TenantID,
			PropertyID:   prop.ID,
			PropertyName: prop.Name,
			ObjectType:   prop.ObjectType,
			ArchivedAt:   prop.ArchivedAt,
			Reason:       models.DeleteReasonRetentionExpired,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return s.audit.Record(tx, models.PropertyChangeAuditEntry{
			TenantID:   prop.TenantID,
			PropertyID: prop.ID,
			ChangeType: models.ChangeTypePermanentDelete,
			ChangedBy:  uuid.Nil,
			Reason:     "retention window expired",
			RiskLevel:  models.RiskHigh,
		})
	})
}

func (s *Service) collectStats(now time.Time) (RetentionStats, error) {
	var archived []models.PropertyDefinition
	err := s.db.
		Select("archived_at", "retention_until", "restoration_requested_at", "restoration_approved").
		Where("lifecycle_state = ?", models.LifecycleArchived).
		Find(&archived).Error
	if err != nil {
		return RetentionStats{}, err
	}
	return ComputeStats(archived, now), nil
}

// ComputeStats buckets the archived population by how close each property is
// to the end of its retention window.
func ComputeStats(archived []models.PropertyDefinition, now time.Time) RetentionStats {
	stats := RetentionStats{}
	soon := now.AddDate(0, 0, 30)
	thisYear := now.AddDate(1, 0, 0)

	for _, prop := range archived {
		if prop.RestorationRequestedAt != nil && !prop.RestorationApproved {
			stats.PendingRestorations++
		}
		if prop.ArchivedAt != nil {
			if stats.OldestArchivedAt == nil || prop.ArchivedAt.Before(*stats.OldestArchivedAt) {
				t := *prop.ArchivedAt
				stats.OldestArchivedAt = &t
			}
		}
		if prop.RetentionUntil == nil {
			stats.LongTerm++
			continue
		}
		switch {
		case prop.RetentionUntil.Before(now):
			stats.Expired++
		case prop.RetentionUntil.Before(soon):
			stats.ExpiringSoon++
		case prop.RetentionUntil.Before(thisYear):
			stats.ExpiringThisYear++
		default:
			stats.LongTerm++
		}
	}

	// rough per-definition footprint used for capacity dashboards
	stats.EstimatedStorageKB = int64(len(archived)) * 2
	return stats
}

// PurgeEligible reports whether a property may be permanently deleted right
// now: archived, retention fully elapsed, and no restoration request pending.
func PurgeEligible(prop models.PropertyDefinition, now time.Time) bool {
	if prop.LifecycleState != models.LifecycleArchived {
		return false
	}
	if prop.RetentionUntil == nil || !prop.RetentionUntil.Before(now) {
		return false
	}
	return prop.RestorationRequestedAt == nil
}

// ApplyCap returns at most cap candidates and whether the cap truncated the
// batch. Candidates are assumed already ordered oldest first.
func ApplyCap(candidates []models.PropertyDefinition, cap int) ([]models.PropertyDefinition, bool) {
	if cap > 0 && len(candidates) > cap {
		return candidates[:cap], true
	}
	return candidates, false
}

func tenantKey(id *uuid.UUID) string {
	if id == nil {
		return "global"
	}
	return id.String()
}
