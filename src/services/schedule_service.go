package services

import (
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/shopspring/decimal"
)

// ScheduleService generates full installment schedules for debt contracts.
// It is a pure computation service: no I/O, no hidden state.
type ScheduleService struct{}

// NewScheduleService creates a new schedule service
func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// BuildSchedule produces the ordered list of installment periods for a
// contract, one per month of tenor. Principal is amortized on a straight-line
// basis: every period carries principal/tenor, except the last, which absorbs
// the residual so the running balance lands exactly on zero. The interest part
// of each period is whatever remains of that period's installment amount.
//
// Status is defaulted to pending and notes are absent; both are placeholders
// for the reconciler, which owns merging caller state back in.
func (s *ScheduleService) BuildSchedule(contract *models.DebtContract) ([]models.InstallmentPeriod, error) {
	if err := contract.Validate(); err != nil {
		return nil, err
	}

	tenor := contract.TenorMonths()
	tenorDec := decimal.NewFromInt(int64(tenor))

	basePrincipal := contract.Principal.Div(tenorDec)

	schedule := make([]models.InstallmentPeriod, 0, tenor)
	remaining := contract.Principal
	amortized := decimal.Zero
	now := time.Now()

	for period := 1; period <= tenor; period++ {
		amount := contract.AmountForMonth(period)

		principalPart := basePrincipal
		if period == tenor {
			// Residual balancing: the final period clears whatever the
			// straight-line division left outstanding
			principalPart = contract.Principal.Sub(amortized)
		}
		interestPart := amount.Sub(principalPart)

		remaining = remaining.Sub(principalPart)
		if remaining.LessThan(decimal.Zero) {
			remaining = decimal.Zero
		}
		amortized = amortized.Add(principalPart)

		schedule = append(schedule, models.InstallmentPeriod{
			DebtID:           contract.ID,
			Period:           period,
			DueDate:          contract.DueDateForPeriod(period),
			Amount:           amount,
			PrincipalPart:    principalPart,
			InterestPart:     interestPart,
			RemainingBalance: remaining,
			Status:           models.InstallmentStatusPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	return schedule, nil
}
