package services

import (
	"testing"
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func buildSchedule(t *testing.T, contract *models.DebtContract) []models.InstallmentPeriod {
	t.Helper()
	schedule, err := NewScheduleService().BuildSchedule(contract)
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}
	return schedule
}

// assertContiguous verifies the reconciler's structural invariant: ascending,
// 1-indexed, gap-free period numbers.
func assertContiguous(t *testing.T, schedule []models.InstallmentPeriod) {
	t.Helper()
	for i, p := range schedule {
		if p.Period != i+1 {
			t.Fatalf("position %d holds period %d, want %d", i, p.Period, i+1)
		}
	}
}

func TestReconcileFirstGeneration(t *testing.T) {
	service := NewReconcileService()
	contract := fixedContract()
	candidate := buildSchedule(t, contract)

	result, warnings := service.Reconcile(candidate, nil)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if len(result) != len(candidate) {
		t.Fatalf("result length = %d, want %d", len(result), len(candidate))
	}
	assertContiguous(t, result)

	for _, p := range result {
		if p.Status != models.InstallmentStatusPending {
			t.Errorf("period %d status = %s, want pending", p.Period, p.Status)
		}
		if p.ID == uuid.Nil {
			t.Errorf("period %d has no identity assigned", p.Period)
		}
		if p.Notes != nil {
			t.Errorf("period %d has notes %q, want none", p.Period, *p.Notes)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	service := NewReconcileService()
	contract := fixedContract()

	first, _ := service.Reconcile(buildSchedule(t, contract), nil)
	second, warnings := service.Reconcile(buildSchedule(t, contract), first)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if len(second) != len(first) {
		t.Fatalf("second pass length = %d, want %d", len(second), len(first))
	}

	for i := range first {
		a, b := first[i], second[i]
		if a.ID != b.ID {
			t.Errorf("period %d identity drifted: %v -> %v", a.Period, a.ID, b.ID)
		}
		if a.Period != b.Period {
			t.Errorf("period sequence drifted: %d -> %d", a.Period, b.Period)
		}
		if !a.Amount.Equal(b.Amount) {
			t.Errorf("period %d amount drifted: %v -> %v", a.Period, a.Amount, b.Amount)
		}
		if !a.DueDate.Equal(b.DueDate) {
			t.Errorf("period %d due date drifted: %v -> %v", a.Period, a.DueDate, b.DueDate)
		}
		if a.Status != b.Status {
			t.Errorf("period %d status drifted: %s -> %s", a.Period, a.Status, b.Status)
		}
	}
}

func TestReconcilePreservesStatusAndNotesOnEdit(t *testing.T) {
	service := NewReconcileService()
	contract := fixedContract()

	existing, _ := service.Reconcile(buildSchedule(t, contract), nil)
	note := "paid by bank transfer"
	existing[2].Status = models.InstallmentStatusPaid
	existing[2].Notes = &note
	existing[5].Status = models.InstallmentStatusOverdue
	paidID := existing[2].ID

	// Edit the contract: the installment amount changes, the numbers must
	// follow, the human-entered state must not
	contract.InstallmentAmount = decimal.NewFromInt(1200000)
	result, warnings := service.Reconcile(buildSchedule(t, contract), existing)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	assertContiguous(t, result)

	period3 := result[2]
	if !period3.Amount.Equal(decimal.NewFromInt(1200000)) {
		t.Errorf("period 3 amount = %v, want updated 1200000", period3.Amount)
	}
	if period3.Status != models.InstallmentStatusPaid {
		t.Errorf("period 3 status = %s, want paid", period3.Status)
	}
	if period3.Notes == nil || *period3.Notes != note {
		t.Errorf("period 3 notes = %v, want %q", period3.Notes, note)
	}
	if period3.ID != paidID {
		t.Errorf("period 3 identity changed: %v -> %v", paidID, period3.ID)
	}

	if result[5].Status != models.InstallmentStatusOverdue {
		t.Errorf("period 6 status = %s, want overdue", result[5].Status)
	}
	if result[0].Status != models.InstallmentStatusPending {
		t.Errorf("period 1 status = %s, want pending", result[0].Status)
	}
}

func TestReconcileShrinkingTenorDropsTrailingPeriods(t *testing.T) {
	service := NewReconcileService()

	contract := models.NewDebtContractBuilder().
		WithName("Long loan").
		WithPrincipal(decimal.NewFromInt(24000000)).
		WithDateRange(date(2024, time.January, 1), date(2026, time.January, 1)).
		WithDueDay(5).
		WithFixedInstallment(decimal.NewFromInt(1100000)).
		Build()

	existing, _ := service.Reconcile(buildSchedule(t, contract), nil)
	if len(existing) != 24 {
		t.Fatalf("existing length = %d, want 24", len(existing))
	}
	existing[20].Status = models.InstallmentStatusPaid // Beyond the new tenor

	contract.EndDate = date(2025, time.January, 1)
	result, _ := service.Reconcile(buildSchedule(t, contract), existing)

	if len(result) != 12 {
		t.Fatalf("result length = %d, want 12", len(result))
	}
	assertContiguous(t, result)
	for _, p := range result {
		if p.Period > 12 {
			t.Errorf("period %d survived the tenor shrink", p.Period)
		}
	}
}

func TestReconcileGrowingTenorAppendsPending(t *testing.T) {
	service := NewReconcileService()
	contract := stepUpContract()

	existing, _ := service.Reconcile(buildSchedule(t, contract), nil)
	for i := range existing {
		existing[i].Status = models.InstallmentStatusPaid
	}

	contract.EndDate = date(2025, time.January, 1) // 6 -> 12 months
	result, _ := service.Reconcile(buildSchedule(t, contract), existing)

	if len(result) != 12 {
		t.Fatalf("result length = %d, want 12", len(result))
	}
	assertContiguous(t, result)

	for _, p := range result {
		want := models.InstallmentStatusPending
		if p.Period <= 6 {
			want = models.InstallmentStatusPaid
		}
		if p.Status != want {
			t.Errorf("period %d status = %s, want %s", p.Period, p.Status, want)
		}
	}
}

func TestReconcileDuplicateExistingKeepsLastAndWarns(t *testing.T) {
	service := NewReconcileService()
	contract := fixedContract()

	existing, _ := service.Reconcile(buildSchedule(t, contract), nil)

	// Corrupt the persisted set: period 4 appears twice, the later
	// occurrence carrying the state that must win
	duplicate := existing[3]
	duplicate.ID = uuid.New()
	duplicate.Status = models.InstallmentStatusPaid
	existing = append(existing, duplicate)

	result, warnings := service.Reconcile(buildSchedule(t, contract), existing)

	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if warnings[0].Period != 4 || warnings[0].DebtID != contract.ID {
		t.Errorf("warning = %+v, want debt %v period 4", warnings[0], contract.ID)
	}

	assertContiguous(t, result)
	period4 := result[3]
	if period4.Status != models.InstallmentStatusPaid {
		t.Errorf("period 4 status = %s, want paid from last duplicate", period4.Status)
	}
	if period4.ID != duplicate.ID {
		t.Errorf("period 4 identity = %v, want last duplicate %v", period4.ID, duplicate.ID)
	}
}

func TestReconcileIgnoresForeignDebtRecords(t *testing.T) {
	service := NewReconcileService()
	contract := fixedContract()
	candidate := buildSchedule(t, contract)

	foreign := candidate[0]
	foreign.DebtID = uuid.New()
	foreign.Status = models.InstallmentStatusPaid

	result, warnings := service.Reconcile(candidate, []models.InstallmentPeriod{foreign})

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if result[0].Status != models.InstallmentStatusPending {
		t.Errorf("period 1 status = %s, want pending (foreign record must not match)", result[0].Status)
	}
}
