package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/google/uuid"
)

// ReconcileService merges a freshly built schedule with previously persisted
// installments for the same contract. Pure merge, called once per contract
// save: contract edits always win on the numbers, human-entered state always
// survives.
type ReconcileService struct{}

// NewReconcileService creates a new reconcile service
func NewReconcileService() *ReconcileService {
	return &ReconcileService{}
}

// IntegrityWarning signals that the persisted installments handed to Reconcile
// were inconsistent (duplicate period keys). The merge still returns a
// best-effort result; callers should treat the warning as an upstream storage
// problem, not a functional error.
type IntegrityWarning struct {
	DebtID  uuid.UUID
	Period  int
	Message string
}

// String formats the warning for logging
func (w IntegrityWarning) String() string {
	return fmt.Sprintf("debt %s period %d: %s", w.DebtID, w.Period, w.Message)
}

// periodKey uniquely identifies an installment within a contract
type periodKey struct {
	DebtID uuid.UUID
	Period int
}

// Reconcile produces the final installment set to persist. Every candidate
// period appears exactly once in the output, sorted ascending by period. When
// an existing record shares the same (debt, period) key, its identity, status,
// notes and creation time are carried over while all schedule-derived fields
// are taken from the candidate. Existing periods beyond the candidate's length
// are dropped; new trailing candidate periods come through as pending.
//
// Duplicate keys in the existing set are resolved by keeping the last
// occurrence; each duplicate raises an IntegrityWarning.
func (s *ReconcileService) Reconcile(
	candidate []models.InstallmentPeriod,
	existing []models.InstallmentPeriod,
) ([]models.InstallmentPeriod, []IntegrityWarning) {
	var warnings []IntegrityWarning

	index := make(map[periodKey]models.InstallmentPeriod, len(existing))
	for _, record := range existing {
		key := periodKey{DebtID: record.DebtID, Period: record.Period}
		if _, seen := index[key]; seen {
			warnings = append(warnings, IntegrityWarning{
				DebtID:  record.DebtID,
				Period:  record.Period,
				Message: "duplicate period key in persisted installments, keeping last occurrence",
			})
		}
		index[key] = record
	}

	now := time.Now()
	result := make([]models.InstallmentPeriod, 0, len(candidate))
	for _, fresh := range candidate {
		merged := fresh

		if prev, ok := index[periodKey{DebtID: fresh.DebtID, Period: fresh.Period}]; ok {
			merged.ID = prev.ID
			merged.Status = prev.Status
			merged.Notes = prev.Notes
			merged.CreatedAt = prev.CreatedAt
		} else {
			merged.Status = models.InstallmentStatusPending
		}

		if merged.ID == uuid.Nil {
			merged.ID = uuid.New()
		}
		merged.UpdatedAt = now

		result = append(result, merged)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Period < result[j].Period
	})

	return result, warnings
}
