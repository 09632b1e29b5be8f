package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterestStrategy represents how installment amounts are determined over the tenor
type InterestStrategy string

const (
	InterestStrategyFixed  InterestStrategy = "fixed"   // Constant installment for every period
	InterestStrategyStepUp InterestStrategy = "step_up" // Installment declared per month range
)

// DebtStatus represents the status of a debt contract
type DebtStatus string

const (
	DebtStatusActive   DebtStatus = "active"
	DebtStatusSettled  DebtStatus = "settled"
	DebtStatusArchived DebtStatus = "archived"
)

// StepUpTier declares the installment amount for a 1-indexed range of months
// relative to the contract start. Ranges are inclusive on both ends.
type StepUpTier struct {
	StartMonth int             `json:"start_month" db:"start_month"`
	EndMonth   int             `json:"end_month" db:"end_month"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
}

// Contains reports whether the given 1-indexed month falls inside the tier range
func (t StepUpTier) Contains(month int) bool {
	return month >= t.StartMonth && month <= t.EndMonth
}

// Overlaps reports whether two tiers cover any common month
func (t StepUpTier) Overlaps(other StepUpTier) bool {
	return t.StartMonth <= other.EndMonth && other.StartMonth <= t.EndMonth
}

// DebtContract represents a single loan or credit obligation being tracked
type DebtContract struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`

	// Contract terms
	Principal decimal.Decimal `json:"principal" db:"principal"`
	StartDate time.Time       `json:"start_date" db:"start_date"`
	EndDate   time.Time       `json:"end_date" db:"end_date"`
	DueDay    int             `json:"due_day" db:"due_day"` // Calendar day-of-month each installment is due (1-31)

	// Installment strategy
	Strategy InterestStrategy `json:"strategy" db:"strategy"`

	// InstallmentAmount is the fixed monthly installment. Under the step-up
	// strategy it doubles as the fallback amount for months outside every tier.
	InstallmentAmount decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	StepUpTiers       []StepUpTier    `json:"step_up_tiers,omitempty" db:"step_up_tiers"`

	// ScheduleVersion increments on every successful regeneration and guards
	// against concurrent edits to the same contract (optimistic locking).
	ScheduleVersion int64 `json:"schedule_version" db:"schedule_version"`

	// Status and audit
	Status    DebtStatus `json:"status" db:"status"`
	Notes     *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// TenorMonths returns the number of monthly periods in the contract.
// Derived as the whole-month difference between start and end, clamped to 1.
func (d *DebtContract) TenorMonths() int {
	months := wholeMonthDiff(d.StartDate, d.EndDate)
	if months < 1 {
		return 1
	}
	return months
}

// wholeMonthDiff returns the number of whole months between two dates.
// A partial trailing month does not count.
func wholeMonthDiff(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}

// DueDateForPeriod returns the due date of a 1-indexed period: the contract's
// start month advanced by (period - 1) months, with the day set to DueDay
// clamped to the length of the target month.
func (d *DebtContract) DueDateForPeriod(period int) time.Time {
	anchor := time.Date(d.StartDate.Year(), d.StartDate.Month(), 1, 0, 0, 0, 0, d.StartDate.Location())
	anchor = anchor.AddDate(0, period-1, 0)

	day := d.DueDay
	if max := daysInMonth(anchor.Year(), anchor.Month()); day > max {
		day = max
	}

	return time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, anchor.Location())
}

// daysInMonth returns the number of calendar days in the given month
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AmountForMonth returns the installment amount owed for a 1-indexed month.
// Fixed contracts always return InstallmentAmount. Step-up contracts return the
// matching tier's amount, falling back to InstallmentAmount for months outside
// every declared tier.
func (d *DebtContract) AmountForMonth(month int) decimal.Decimal {
	if d.Strategy == InterestStrategyStepUp {
		for _, tier := range d.StepUpTiers {
			if tier.Contains(month) {
				return tier.Amount
			}
		}
	}
	return d.InstallmentAmount
}

// TotalLiability returns the sum of installment amounts across the full tenor
func (d *DebtContract) TotalLiability() decimal.Decimal {
	total := decimal.Zero
	tenor := d.TenorMonths()
	for month := 1; month <= tenor; month++ {
		total = total.Add(d.AmountForMonth(month))
	}
	return total
}

// ImpliedAnnualRate backs out an approximate flat annual interest rate from the
// total overpayment vs. principal, as a percentage. Used for display and for
// routing under the step-up strategy, never for generating the schedule itself.
// Formula: (overpayment / tenor * 12) / principal * 100
func (d *DebtContract) ImpliedAnnualRate() decimal.Decimal {
	if d.Principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	overpayment := d.TotalLiability().Sub(d.Principal)
	if overpayment.LessThan(decimal.Zero) {
		overpayment = decimal.Zero
	}

	tenor := decimal.NewFromInt(int64(d.TenorMonths()))
	return overpayment.Div(tenor).
		Mul(decimal.NewFromInt(12)).
		Div(d.Principal).
		Mul(decimal.NewFromInt(100))
}

// DebtContractBuilder helps construct debt contracts
type DebtContractBuilder struct {
	debt *DebtContract
}

// NewDebtContractBuilder creates a new builder
func NewDebtContractBuilder() *DebtContractBuilder {
	return &DebtContractBuilder{
		debt: &DebtContract{
			ID:        uuid.New(),
			Strategy:  InterestStrategyFixed,
			Status:    DebtStatusActive,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
}

// WithName sets the display name
func (b *DebtContractBuilder) WithName(name string) *DebtContractBuilder {
	b.debt.Name = name
	return b
}

// WithPrincipal sets the original loan amount
func (b *DebtContractBuilder) WithPrincipal(principal decimal.Decimal) *DebtContractBuilder {
	b.debt.Principal = principal
	return b
}

// WithDateRange sets the contract start and end dates
func (b *DebtContractBuilder) WithDateRange(start, end time.Time) *DebtContractBuilder {
	b.debt.StartDate = start
	b.debt.EndDate = end
	return b
}

// WithDueDay sets the calendar day-of-month installments are due
func (b *DebtContractBuilder) WithDueDay(day int) *DebtContractBuilder {
	b.debt.DueDay = day
	return b
}

// WithFixedInstallment sets the fixed strategy with a constant installment
func (b *DebtContractBuilder) WithFixedInstallment(amount decimal.Decimal) *DebtContractBuilder {
	b.debt.Strategy = InterestStrategyFixed
	b.debt.InstallmentAmount = amount
	return b
}

// WithStepUpTiers sets the step-up strategy with declared tiers and the
// fallback amount for months outside every tier
func (b *DebtContractBuilder) WithStepUpTiers(tiers []StepUpTier, fallback decimal.Decimal) *DebtContractBuilder {
	b.debt.Strategy = InterestStrategyStepUp
	b.debt.StepUpTiers = tiers
	b.debt.InstallmentAmount = fallback
	return b
}

// Build creates the debt contract
func (b *DebtContractBuilder) Build() *DebtContract {
	return b.debt
}
