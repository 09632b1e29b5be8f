package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the payment status of an installment period.
// The status is owned by the caller (user actions / overdue sweeps), never by
// schedule generation: regenerating a contract must preserve it.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending" // Not yet paid, not past due
	InstallmentStatusPaid    InstallmentStatus = "paid"    // Payment recorded
	InstallmentStatusOverdue InstallmentStatus = "overdue" // Due date passed without payment
)

// InstallmentPeriod represents one scheduled monthly payment obligation of a
// debt contract. Amount, split and balance are schedule-derived and recomputed
// on every contract edit; status and notes are caller-owned and survive edits.
type InstallmentPeriod struct {
	ID     uuid.UUID `json:"id" db:"id"`
	DebtID uuid.UUID `json:"debt_id" db:"debt_id"`

	// Period is the 1-indexed sequence number, unique and contiguous within
	// a contract
	Period  int       `json:"period" db:"period"`
	DueDate time.Time `json:"due_date" db:"due_date"`

	// Schedule-derived amounts
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	PrincipalPart    decimal.Decimal `json:"principal_part" db:"principal_part"`
	InterestPart     decimal.Decimal `json:"interest_part" db:"interest_part"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`

	// Caller-owned state
	Status InstallmentStatus `json:"status" db:"status"`
	Notes  *string           `json:"notes,omitempty" db:"notes"`

	// Audit
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanTransitionTo checks if the installment can transition to a new status.
// Regeneration never forces a transition; only user actions and the overdue
// sweep move installments between these states.
func (p *InstallmentPeriod) CanTransitionTo(newStatus InstallmentStatus) bool {
	validTransitions := map[InstallmentStatus][]InstallmentStatus{
		InstallmentStatusPending: {
			InstallmentStatusPaid,
			InstallmentStatusOverdue,
		},
		InstallmentStatusOverdue: {
			InstallmentStatusPaid,
		},
		InstallmentStatusPaid: {
			InstallmentStatusPending, // Manual reset
		},
	}

	allowed, exists := validTransitions[p.Status]
	if !exists {
		return false
	}

	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// IsPaid returns true if the installment has been paid
func (p *InstallmentPeriod) IsPaid() bool {
	return p.Status == InstallmentStatusPaid
}

// IsDue reports whether the installment's due date has passed without payment
func (p *InstallmentPeriod) IsDue(asOf time.Time) bool {
	return !p.IsPaid() && asOf.After(p.DueDate)
}

// CurrentPeriod returns the installment a payer should act on as of the given
// date: the earliest unpaid period, preferring one whose due date has not
// passed. Returns nil for an empty or fully paid schedule.
func CurrentPeriod(schedule []InstallmentPeriod, asOf time.Time) *InstallmentPeriod {
	var firstUnpaid *InstallmentPeriod
	for i := range schedule {
		p := &schedule[i]
		if p.IsPaid() {
			continue
		}
		if firstUnpaid == nil {
			firstUnpaid = p
		}
		if !asOf.After(p.DueDate) {
			return p
		}
	}
	return firstUnpaid
}

// ScheduleSummary provides aggregate statistics over a debt's installments
type ScheduleSummary struct {
	DebtID             uuid.UUID       `json:"debt_id"`
	TotalPeriods       int             `json:"total_periods"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	TotalPrincipal     decimal.Decimal `json:"total_principal"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	PaidPeriods        int             `json:"paid_periods"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	PendingPeriods     int             `json:"pending_periods"`
	PendingAmount      decimal.Decimal `json:"pending_amount"`
	OverduePeriods     int             `json:"overdue_periods"`
	OverdueAmount      decimal.Decimal `json:"overdue_amount"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
	NextDueDate        *time.Time      `json:"next_due_date,omitempty"`
}

// CalculateScheduleSummary computes summary statistics for a schedule.
// The input is expected sorted ascending by period.
func CalculateScheduleSummary(schedule []InstallmentPeriod) *ScheduleSummary {
	summary := &ScheduleSummary{
		TotalAmount:    decimal.Zero,
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		PaidAmount:     decimal.Zero,
		PendingAmount:  decimal.Zero,
		OverdueAmount:  decimal.Zero,
	}

	summary.TotalPeriods = len(schedule)

	for _, p := range schedule {
		if summary.DebtID == uuid.Nil {
			summary.DebtID = p.DebtID
		}

		summary.TotalAmount = summary.TotalAmount.Add(p.Amount)
		summary.TotalPrincipal = summary.TotalPrincipal.Add(p.PrincipalPart)
		summary.TotalInterest = summary.TotalInterest.Add(p.InterestPart)

		switch p.Status {
		case InstallmentStatusPaid:
			summary.PaidPeriods++
			summary.PaidAmount = summary.PaidAmount.Add(p.Amount)
		case InstallmentStatusOverdue:
			summary.OverduePeriods++
			summary.OverdueAmount = summary.OverdueAmount.Add(p.Amount)
		default:
			summary.PendingPeriods++
			summary.PendingAmount = summary.PendingAmount.Add(p.Amount)
		}

		if !p.IsPaid() && summary.NextDueDate == nil {
			due := p.DueDate
			summary.NextDueDate = &due
		}
	}

	// Principal still owed is the sum of principal parts on unpaid periods
	summary.RemainingPrincipal = summary.TotalPrincipal
	for _, p := range schedule {
		if p.IsPaid() {
			summary.RemainingPrincipal = summary.RemainingPrincipal.Sub(p.PrincipalPart)
		}
	}

	return summary
}
