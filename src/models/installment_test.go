package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestInstallmentStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		fromStatus  InstallmentStatus
		toStatus    InstallmentStatus
		shouldAllow bool
	}{
		// From Pending
		{"pending to paid", InstallmentStatusPending, InstallmentStatusPaid, true},
		{"pending to overdue", InstallmentStatusPending, InstallmentStatusOverdue, true},
		{"pending to pending", InstallmentStatusPending, InstallmentStatusPending, false},

		// From Overdue
		{"overdue to paid", InstallmentStatusOverdue, InstallmentStatusPaid, true},
		{"overdue to pending", InstallmentStatusOverdue, InstallmentStatusPending, false},
		{"overdue to overdue", InstallmentStatusOverdue, InstallmentStatusOverdue, false},

		// From Paid
		{"paid to pending (manual reset)", InstallmentStatusPaid, InstallmentStatusPending, true},
		{"paid to overdue", InstallmentStatusPaid, InstallmentStatusOverdue, false},
		{"paid to paid", InstallmentStatusPaid, InstallmentStatusPaid, false},

		// Unknown status
		{"unknown to paid", InstallmentStatus("void"), InstallmentStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installment := &InstallmentPeriod{Status: tt.fromStatus}
			result := installment.CanTransitionTo(tt.toStatus)
			if result != tt.shouldAllow {
				t.Errorf("Expected CanTransitionTo(%s) = %v, got %v", tt.toStatus, tt.shouldAllow, result)
			}
		})
	}
}

func TestInstallmentIsDue(t *testing.T) {
	due := date(2024, time.March, 5)

	tests := []struct {
		name     string
		status   InstallmentStatus
		asOf     time.Time
		expected bool
	}{
		{"Pending before due date", InstallmentStatusPending, date(2024, time.March, 1), false},
		{"Pending on due date", InstallmentStatusPending, due, false},
		{"Pending after due date", InstallmentStatusPending, date(2024, time.March, 6), true},
		{"Paid after due date", InstallmentStatusPaid, date(2024, time.March, 6), false},
		{"Overdue after due date", InstallmentStatusOverdue, date(2024, time.March, 6), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installment := &InstallmentPeriod{DueDate: due, Status: tt.status}
			if got := installment.IsDue(tt.asOf); got != tt.expected {
				t.Errorf("IsDue(%v) = %v, want %v", tt.asOf, got, tt.expected)
			}
		})
	}
}

func TestCurrentPeriod(t *testing.T) {
	schedule := []InstallmentPeriod{
		{Period: 1, DueDate: date(2024, time.January, 5), Status: InstallmentStatusPaid},
		{Period: 2, DueDate: date(2024, time.February, 5), Status: InstallmentStatusOverdue},
		{Period: 3, DueDate: date(2024, time.March, 5), Status: InstallmentStatusPending},
		{Period: 4, DueDate: date(2024, time.April, 5), Status: InstallmentStatusPending},
	}

	tests := []struct {
		name           string
		schedule       []InstallmentPeriod
		asOf           time.Time
		expectedPeriod int
		expectNil      bool
	}{
		{"Upcoming unpaid period wins", schedule, date(2024, time.February, 20), 3, false},
		{"On a due date that period is current", schedule, date(2024, time.March, 5), 3, false},
		{"Everything overdue returns earliest unpaid", schedule, date(2024, time.December, 1), 2, false},
		{"Empty schedule", nil, date(2024, time.January, 1), 0, true},
		{
			"Fully paid schedule",
			[]InstallmentPeriod{{Period: 1, DueDate: date(2024, time.January, 5), Status: InstallmentStatusPaid}},
			date(2024, time.January, 1), 0, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentPeriod(tt.schedule, tt.asOf)
			if tt.expectNil {
				if got != nil {
					t.Fatalf("CurrentPeriod() = period %d, want nil", got.Period)
				}
				return
			}
			if got == nil {
				t.Fatalf("CurrentPeriod() = nil, want period %d", tt.expectedPeriod)
			}
			if got.Period != tt.expectedPeriod {
				t.Errorf("CurrentPeriod() = period %d, want %d", got.Period, tt.expectedPeriod)
			}
		})
	}
}

func TestCalculateScheduleSummary(t *testing.T) {
	debtID := uuid.New()
	schedule := []InstallmentPeriod{
		{
			DebtID: debtID, Period: 1, DueDate: date(2024, time.January, 5),
			Amount:        decimal.NewFromInt(1100000),
			PrincipalPart: decimal.NewFromInt(1000000),
			InterestPart:  decimal.NewFromInt(100000),
			Status:        InstallmentStatusPaid,
		},
		{
			DebtID: debtID, Period: 2, DueDate: date(2024, time.February, 5),
			Amount:        decimal.NewFromInt(1100000),
			PrincipalPart: decimal.NewFromInt(1000000),
			InterestPart:  decimal.NewFromInt(100000),
			Status:        InstallmentStatusOverdue,
		},
		{
			DebtID: debtID, Period: 3, DueDate: date(2024, time.March, 5),
			Amount:        decimal.NewFromInt(1100000),
			PrincipalPart: decimal.NewFromInt(1000000),
			InterestPart:  decimal.NewFromInt(100000),
			Status:        InstallmentStatusPending,
		},
	}

	summary := CalculateScheduleSummary(schedule)

	if summary.DebtID != debtID {
		t.Errorf("DebtID = %v, want %v", summary.DebtID, debtID)
	}
	if summary.TotalPeriods != 3 {
		t.Errorf("TotalPeriods = %d, want 3", summary.TotalPeriods)
	}
	if !summary.TotalAmount.Equal(decimal.NewFromInt(3300000)) {
		t.Errorf("TotalAmount = %v, want 3300000", summary.TotalAmount)
	}
	if !summary.TotalInterest.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("TotalInterest = %v, want 300000", summary.TotalInterest)
	}
	if summary.PaidPeriods != 1 || summary.OverduePeriods != 1 || summary.PendingPeriods != 1 {
		t.Errorf("Status buckets = paid %d overdue %d pending %d, want 1/1/1",
			summary.PaidPeriods, summary.OverduePeriods, summary.PendingPeriods)
	}
	if !summary.RemainingPrincipal.Equal(decimal.NewFromInt(2000000)) {
		t.Errorf("RemainingPrincipal = %v, want 2000000", summary.RemainingPrincipal)
	}
	if summary.NextDueDate == nil || !summary.NextDueDate.Equal(date(2024, time.February, 5)) {
		t.Errorf("NextDueDate = %v, want 2024-02-05", summary.NextDueDate)
	}
}

func TestCalculateScheduleSummaryEmpty(t *testing.T) {
	summary := CalculateScheduleSummary(nil)

	if summary.TotalPeriods != 0 {
		t.Errorf("TotalPeriods = %d, want 0", summary.TotalPeriods)
	}
	if !summary.TotalAmount.Equal(decimal.Zero) {
		t.Errorf("TotalAmount = %v, want 0", summary.TotalAmount)
	}
	if summary.NextDueDate != nil {
		t.Errorf("NextDueDate = %v, want nil", summary.NextDueDate)
	}
}
