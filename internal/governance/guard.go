// Package governance implements the property lifecycle governance engine:
// dependency index, deletion guard, governed lifecycle transitions and
// type-conversion safety.
package governance

import (
	"fmt"
	"time"

	"github.com/tailtown/platform/internal/models"
)

// Operation is the lifecycle operation being guarded
type Operation string

const (
	OperationArchive Operation = "archive"
	OperationDelete  Operation = "delete"
)

// RecencyWindow is how recently a property must have been modified for the
// recency check to demand confirmation.
const RecencyWindow = 7 * 24 * time.Hour

// ConfirmationStep is one confirmation the caller must collect before the
// operation proceeds.
type ConfirmationStep struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// GuardResult is the full decision for one archive/delete request. Blockers
// and warnings are structured lists so a UI can render every reason at once.
type GuardResult struct {
	CanProceed           bool               `json:"can_proceed"`
	Blockers             []string           `json:"blockers"`
	Warnings             []string           `json:"warnings"`
	RequiresConfirmation bool               `json:"requires_confirmation"`
	ConfirmationSteps    []ConfirmationStep `json:"confirmation_steps"`
}

// DependencySummary aggregates the active dependency edges of a property
type DependencySummary struct {
	TotalCount    int64 `json:"total_count"`
	CriticalCount int64 `json:"critical_count"`
}

// GuardInput is everything the check pipeline needs; it is loaded by the
// service wrapper so the pipeline itself stays pure and unit-testable.
type GuardInput struct {
	Property       models.PropertyDefinition
	Operation      Operation
	Dependencies   DependencySummary
	PopulatedCount int64
	Now            time.Time
}

// checkResult is the outcome of one independent guard check
type checkResult struct {
	blockers          []string
	warnings          []string
	step              *ConfirmationStep
	needsConfirmation bool
}

type guardCheck func(GuardInput) checkResult

// guardChecks run in this fixed order and accumulate rather than
// short-circuit, so a caller sees the full picture in one round trip.
var guardChecks = []guardCheck{
	checkTierPolicy,
	checkModificationFlags,
	checkDependencies,
	checkDataPopulation,
	checkRecency,
	checkAssetUsage,
	checkRequiredUniqueFlags,
}

// EvaluateGuard folds the check pipeline into one decision. It never mutates
// state; repeated calls are idempotent.
func EvaluateGuard(input GuardInput) GuardResult {
	result := GuardResult{
		Blockers:          []string{},
		Warnings:          []string{},
		ConfirmationSteps: []ConfirmationStep{},
	}

	for _, check := range guardChecks {
		out := check(input)
		result.Blockers = append(result.Blockers, out.blockers...)
		result.Warnings = append(result.Warnings, out.warnings...)
		if out.step != nil {
			result.ConfirmationSteps = append(result.ConfirmationSteps, *out.step)
		}
		if out.needsConfirmation {
			result.RequiresConfirmation = true
		}
	}

	if result.RequiresConfirmation {
		result.ConfirmationSteps = append(result.ConfirmationSteps, ConfirmationStep{
			ID:          "confirm-name",
			Description: fmt.Sprintf("Type the property name '%s' exactly to confirm", input.Property.Name),
			Required:    true,
		})
	}

	result.CanProceed = len(result.Blockers) == 0
	return result
}

// Check 1: tier policy. System properties never leave ACTIVE; protected
// properties can be archived but never deleted through this path.
func checkTierPolicy(input GuardInput) checkResult {
	switch input.Property.PropertyType {
	case models.PropertyTypeSystem:
		return checkResult{blockers: []string{"System properties cannot be deleted or archived"}}
	case models.PropertyTypeProtected:
		if input.Operation == OperationDelete {
			return checkResult{blockers: []string{"Protected properties cannot be deleted; archive instead"}}
		}
	}
	return checkResult{}
}

// Check 2: modification metadata flags
func checkModificationFlags(input GuardInput) checkResult {
	var out checkResult
	if !input.Property.Modification.Archivable {
		out.blockers = append(out.blockers, "This property is flagged as non-archivable")
	}
	if input.Property.Modification.ReadOnlyDefinition && input.Operation == OperationDelete {
		out.blockers = append(out.blockers, "This property has a read-only definition and cannot be deleted")
	}
	return out
}

// Check 3: dependency graph. Critical edges demand a resolution step;
// non-critical edges only warn.
func checkDependencies(input GuardInput) checkResult {
	deps := input.Dependencies
	if deps.CriticalCount > 0 {
		return checkResult{
			warnings: []string{fmt.Sprintf("%d critical dependencies reference this property and will break", deps.CriticalCount)},
			step: &ConfirmationStep{
				ID:          "resolve-critical-dependencies",
				Description: "Resolve the critical dependencies or choose a cascade strategy",
				Required:    true,
			},
			needsConfirmation: true,
		}
	}
	if deps.TotalCount > 0 {
		return checkResult{
			warnings: []string{fmt.Sprintf("%d assets reference this property", deps.TotalCount)},
		}
	}
	return checkResult{}
}

// Check 4: data population. Populated values mean data loss; the export step
// is offered but optional.
func checkDataPopulation(input GuardInput) checkResult {
	if input.PopulatedCount == 0 {
		return checkResult{}
	}
	return checkResult{
		warnings: []string{fmt.Sprintf("%d records currently hold a value for this property", input.PopulatedCount)},
		step: &ConfirmationStep{
			ID:          "export-data",
			Description: fmt.Sprintf("Export the %d stored values before proceeding", input.PopulatedCount),
			Required:    false,
		},
		needsConfirmation: true,
	}
}

// Check 5: recency
func checkRecency(input GuardInput) checkResult {
	if input.Now.Sub(input.Property.UpdatedAt) >= RecencyWindow {
		return checkResult{}
	}
	return checkResult{
		warnings: []string{"This property was modified within the last 7 days"},
		step: &ConfirmationStep{
			ID:          "recent-modification",
			Description: "Confirm the operation despite the recent modification",
			Required:    true,
		},
		needsConfirmation: true,
	}
}

// Check 6: asset usage index
func checkAssetUsage(input GuardInput) checkResult {
	total := input.Property.UsedIn.Total()
	if total == 0 {
		return checkResult{}
	}
	return checkResult{
		warnings: []string{fmt.Sprintf("This property is used by %d workflows, validations, forms, reports or integrations", total)},
		step: &ConfirmationStep{
			ID:          "asset-usage",
			Description: "Review and detach the assets that use this property",
			Required:    true,
		},
		needsConfirmation: true,
	}
}

// Check 7: required/unique flags fold into the final confirmation without a
// dedicated step.
func checkRequiredUniqueFlags(input GuardInput) checkResult {
	var out checkResult
	if input.Property.IsRequired {
		out.warnings = append(out.warnings, "This property is marked required")
		out.needsConfirmation = true
	}
	if input.Property.UniqueConstraint {
		out.warnings = append(out.warnings, "This property carries a unique constraint")
		out.needsConfirmation = true
	}
	return out
}
