package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailtown/platform/internal/models"
)

func archivedProp(archivedAt, retentionUntil time.Time) models.PropertyDefinition {
	return models.PropertyDefinition{
		LifecycleState: models.LifecycleArchived,
		ArchivedAt:     &archivedAt,
		RetentionUntil: &retentionUntil,
	}
}

func TestApplyCap(t *testing.T) {
	props := make([]models.PropertyDefinition, 150)

	capped, truncated := ApplyCap(props, 100)
	assert.Len(t, capped, 100)
	assert.True(t, truncated)

	under, truncated := ApplyCap(props[:50], 100)
	assert.Len(t, under, 50)
	assert.False(t, truncated)

	exact, truncated := ApplyCap(props[:100], 100)
	assert.Len(t, exact, 100)
	assert.False(t, truncated)
}

func TestPurgeEligible(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	requested := now.AddDate(0, 0, -2)

	expired := archivedProp(now.AddDate(-8, 0, 0), now.AddDate(0, 0, -1))
	assert.True(t, PurgeEligible(expired, now))

	future := archivedProp(now.AddDate(-2, 0, 0), now.AddDate(5, 0, 0))
	assert.False(t, PurgeEligible(future, now), "retention still running must never purge")

	atBoundary := archivedProp(now.AddDate(-7, 0, 0), now)
	assert.False(t, PurgeEligible(atBoundary, now), "retention elapses strictly before now")

	pendingRestore := archivedProp(now.AddDate(-8, 0, 0), now.AddDate(0, 0, -1))
	pendingRestore.RestorationRequestedAt = &requested
	assert.False(t, PurgeEligible(pendingRestore, now))

	noRetention := models.PropertyDefinition{LifecycleState: models.LifecycleArchived}
	assert.False(t, PurgeEligible(noRetention, now))

	active := models.PropertyDefinition{LifecycleState: models.LifecycleActive}
	assert.False(t, PurgeEligible(active, now))
}

func TestComputeStatsBuckets(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	archived := []models.PropertyDefinition{
		archivedProp(now.AddDate(-8, 0, 0), now.AddDate(-1, 0, 0)), // expired
		archivedProp(now.AddDate(-7, 0, 0), now.AddDate(0, 0, 10)), // expiring soon
		archivedProp(now.AddDate(-7, 0, 0), now.AddDate(0, 6, 0)),  // expiring this year
		archivedProp(now.AddDate(-2, 0, 0), now.AddDate(5, 0, 0)),  // long term
		archivedProp(now.AddDate(-1, 0, 0), now.AddDate(6, 0, 0)),  // long term
	}

	stats := ComputeStats(archived, now)

	assert.Equal(t, int64(1), stats.Expired)
	assert.Equal(t, int64(1), stats.ExpiringSoon)
	assert.Equal(t, int64(1), stats.ExpiringThisYear)
	assert.Equal(t, int64(2), stats.LongTerm)
}

func TestComputeStatsOldestArchived(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	oldest := now.AddDate(-8, 0, 0)

	archived := []models.PropertyDefinition{
		archivedProp(now.AddDate(-3, 0, 0), now.AddDate(4, 0, 0)),
		archivedProp(oldest, now.AddDate(-1, 0, 0)),
		archivedProp(now.AddDate(-5, 0, 0), now.AddDate(2, 0, 0)),
	}

	stats := ComputeStats(archived, now)
	require.NotNil(t, stats.OldestArchivedAt)
	assert.True(t, stats.OldestArchivedAt.Equal(oldest))
}

func TestComputeStatsPendingRestorations(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	requested := now.AddDate(0, 0, -1)

	pending := archivedProp(now.AddDate(-1, 0, 0), now.AddDate(6, 0, 0))
	pending.RestorationRequestedAt = &requested

	approved := archivedProp(now.AddDate(-1, 0, 0), now.AddDate(6, 0, 0))
	approved.RestorationRequestedAt = &requested
	approved.RestorationApproved = true

	stats := ComputeStats([]models.PropertyDefinition{pending, approved}, now)
	assert.Equal(t, int64(1), stats.PendingRestorations)
}

func TestComputeStatsMissingRetentionCountsLongTerm(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	prop := models.PropertyDefinition{LifecycleState: models.LifecycleArchived}

	stats := ComputeStats([]models.PropertyDefinition{prop}, now)
	assert.Equal(t, int64(1), stats.LongTerm)
	assert.Nil(t, stats.OldestArchivedAt)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 7, cfg.RetentionYears)
	assert.Equal(t, 100, cfg.BatchCap)
}
