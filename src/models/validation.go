package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError describes a contract precondition violation. It blocks
// schedule generation entirely; the caller surfaces the offending field to the
// user and must not persist anything.
type ValidationError struct {
	Field       string
	Message     string
	TierIndices []int // Populated for tier violations (offending tier positions)
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.TierIndices) > 0 {
		return fmt.Sprintf("invalid debt contract: %s (tiers %v): %s", e.Field, e.TierIndices, e.Message)
	}
	return fmt.Sprintf("invalid debt contract: %s: %s", e.Field, e.Message)
}

// Validate checks the schedule-generation preconditions of a contract.
// It fails fast on the first violation and never coerces values.
func (d *DebtContract) Validate() error {
	if d.Principal.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "principal", Message: "must be greater than zero"}
	}

	if !d.StartDate.Before(d.EndDate) {
		return &ValidationError{Field: "end_date", Message: "must be after start_date"}
	}

	if d.DueDay < 1 || d.DueDay > 31 {
		return &ValidationError{Field: "due_day", Message: "must be between 1 and 31"}
	}

	switch d.Strategy {
	case InterestStrategyFixed:
		if d.InstallmentAmount.LessThanOrEqual(decimal.Zero) {
			return &ValidationError{Field: "installment_amount", Message: "must be greater than zero for the fixed strategy"}
		}
	case InterestStrategyStepUp:
		if len(d.StepUpTiers) == 0 {
			return &ValidationError{Field: "step_up_tiers", Message: "at least one tier is required for the step-up strategy"}
		}
		return d.validateTiers()
	default:
		return &ValidationError{Field: "strategy", Message: fmt.Sprintf("unknown strategy %q", d.Strategy)}
	}

	return nil
}

// validateTiers checks each declared tier and rejects pairwise overlaps
func (d *DebtContract) validateTiers() error {
	for i, tier := range d.StepUpTiers {
		if tier.Amount.LessThanOrEqual(decimal.Zero) {
			return &ValidationError{Field: "step_up_tiers", Message: "tier amount must be greater than zero", TierIndices: []int{i}}
		}
		if tier.StartMonth < 1 {
			return &ValidationError{Field: "step_up_tiers", Message: "tier start month must be at least 1", TierIndices: []int{i}}
		}
		if tier.EndMonth < tier.StartMonth {
			return &ValidationError{Field: "step_up_tiers", Message: "tier end month must not precede start month", TierIndices: []int{i}}
		}
	}

	for i := 0; i < len(d.StepUpTiers); i++ {
		for j := i + 1; j < len(d.StepUpTiers); j++ {
			if d.StepUpTiers[i].Overlaps(d.StepUpTiers[j]) {
				return &ValidationError{Field: "step_up_tiers", Message: "tiers must not overlap", TierIndices: []int{i, j}}
			}
		}
	}

	return nil
}
