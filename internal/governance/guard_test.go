package governance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailtown/platform/internal/models"
)

func baseProperty(tier models.PropertyType) models.PropertyDefinition {
	return models.PropertyDefinition{
		Name:           "custom_vaccine_expiry_date",
		ObjectType:     models.ObjectTypePet,
		DataType:       models.DataTypeDate,
		PropertyType:   tier,
		Modification:   models.ModificationMetadata{Archivable: true},
		LifecycleState: models.LifecycleActive,
		UpdatedAt:      time.Now().Add(-30 * 24 * time.Hour),
	}
}

func TestGuardSystemPropertyBlocked(t *testing.T) {
	for _, op := range []Operation{OperationDelete, OperationArchive} {
		result := EvaluateGuard(GuardInput{
			Property:  baseProperty(models.PropertyTypeSystem),
			Operation: op,
			Now:       time.Now(),
		})
		assert.False(t, result.CanProceed, "operation %s", op)
		assert.Contains(t, result.Blockers, "System properties cannot be deleted or archived")
	}
}

func TestGuardProtectedTier(t *testing.T) {
	deleteResult := EvaluateGuard(GuardInput{
		Property:  baseProperty(models.PropertyTypeProtected),
		Operation: OperationDelete,
		Now:       time.Now(),
	})
	assert.False(t, deleteResult.CanProceed)
	assert.Contains(t, deleteResult.Blockers, "Protected properties cannot be deleted; archive instead")

	archiveResult := EvaluateGuard(GuardInput{
		Property:  baseProperty(models.PropertyTypeProtected),
		Operation: OperationArchive,
		Now:       time.Now(),
	})
	assert.True(t, archiveResult.CanProceed)
}

func TestGuardModificationFlags(t *testing.T) {
	prop := baseProperty(models.PropertyTypeCustom)
	prop.Modification.Archivable = false

	result := EvaluateGuard(GuardInput{Property: prop, Operation: OperationArchive, Now: time.Now()})
	assert.False(t, result.CanProceed)
	assert.Contains(t, result.Blockers, "This property is flagged as non-archivable")

	readOnly := baseProperty(models.PropertyTypeStandard)
	readOnly.Modification.ReadOnlyDefinition = true

	deleteResult := EvaluateGuard(GuardInput{Property: readOnly, Operation: OperationDelete, Now: time.Now()})
	assert.False(t, deleteResult.CanProceed)

	archiveResult := EvaluateGuard(GuardInput{Property: readOnly, Operation: OperationArchive, Now: time.Now()})
	assert.True(t, archiveResult.CanProceed)
}

// TestGuardStepOrdering exercises a populated, recently modified protected
// property with critical dependencies and verifies the confirmation steps
// come out in pipeline order with the name retype last.
func TestGuardStepOrdering(t *testing.T) {
	prop := baseProperty(models.PropertyTypeProtected)
	prop.UpdatedAt = time.Now().Add(-48 * time.Hour)

	result := EvaluateGuard(GuardInput{
		Property:       prop,
		Operation:      OperationArchive,
		Dependencies:   DependencySummary{TotalCount: 2, CriticalCount: 2},
		PopulatedCount: 500,
		Now:            time.Now(),
	})

	assert.True(t, result.CanProceed)
	assert.True(t, result.RequiresConfirmation)

	require.Len(t, result.ConfirmationSteps, 4)
	assert.Equal(t, "resolve-critical-dependencies", result.ConfirmationSteps[0].ID)
	assert.Equal(t, "export-data", result.ConfirmationSteps[1].ID)
	assert.Equal(t, "recent-modification", result.ConfirmationSteps[2].ID)
	assert.Equal(t, "confirm-name", result.ConfirmationSteps[3].ID)

	assert.True(t, result.ConfirmationSteps[0].Required)
	assert.False(t, result.ConfirmationSteps[1].Required)
	assert.True(t, result.ConfirmationSteps[3].Required)
}

func TestGuardCleanPropertyPasses(t *testing.T) {
	result := EvaluateGuard(GuardInput{
		Property:  baseProperty(models.PropertyTypeCustom),
		Operation: OperationDelete,
		Now:       time.Now(),
	})

	assert.True(t, result.CanProceed)
	assert.False(t, result.RequiresConfirmation)
	assert.Empty(t, result.Blockers)
	assert.Empty(t, result.ConfirmationSteps)
}

// Non-critical dependencies warn but never demand confirmation
func TestGuardNonCriticalDependencies(t *testing.T) {
	result := EvaluateGuard(GuardInput{
		Property:     baseProperty(models.PropertyTypeCustom),
		Operation:    OperationDelete,
		Dependencies: DependencySummary{TotalCount: 3, CriticalCount: 0},
		Now:          time.Now(),
	})

	assert.True(t, result.CanProceed)
	assert.False(t, result.RequiresConfirmation)
	assert.NotEmpty(t, result.Warnings)
	assert.Empty(t, result.ConfirmationSteps)
}

func TestGuardAssetUsageStep(t *testing.T) {
	prop := baseProperty(models.PropertyTypeCustom)
	prop.UsedIn = models.UsageIndex{Workflows: []string{"wf-1"}, Reports: []string{"r-1", "r-2"}}

	result := EvaluateGuard(GuardInput{Property: prop, Operation: OperationDelete, Now: time.Now()})

	assert.True(t, result.CanProceed)
	assert.True(t, result.RequiresConfirmation)
	require.Len(t, result.ConfirmationSteps, 2)
	assert.Equal(t, "asset-usage", result.ConfirmationSteps[0].ID)
	assert.Equal(t, "confirm-name", result.ConfirmationSteps[1].ID)
}

// Required and unique flags fold into the name retype with no dedicated step
func TestGuardRequiredUniqueFlags(t *testing.T) {
	prop := baseProperty(models.PropertyTypeCustom)
	prop.IsRequired = true
	prop.UniqueConstraint = true

	result := EvaluateGuard(GuardInput{Property: prop, Operation: OperationDelete, Now: time.Now()})

	assert.True(t, result.CanProceed)
	assert.True(t, result.RequiresConfirmation)
	require.Len(t, result.ConfirmationSteps, 1)
	assert.Equal(t, "confirm-name", result.ConfirmationSteps[0].ID)
	assert.Len(t, result.Warnings, 2)
}

// The guard is pure; identical inputs must produce identical outputs
func TestGuardIdempotent(t *testing.T) {
	input := GuardInput{
		Property:       baseProperty(models.PropertyTypeProtected),
		Operation:      OperationArchive,
		Dependencies:   DependencySummary{TotalCount: 5, CriticalCount: 1},
		PopulatedCount: 10,
		Now:            time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	first := EvaluateGuard(input)
	second := EvaluateGuard(input)
	assert.Equal(t, first, second)
}
