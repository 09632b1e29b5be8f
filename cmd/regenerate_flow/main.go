package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/debtwise/debt-ledger/src/services"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// This example demonstrates schedule regeneration for a step-up debt:
// 1. Create a contract with declared payment tiers
// 2. Record a payment
// 3. Edit the contract (extend tenor, raise fallback installment)
// 4. Regenerate: payment status survives, new trailing periods are pending
// 5. Show the optimistic-concurrency guard rejecting a stale edit

func main() {
	db, err := sql.Open("postgres", dsn())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	debtService := services.NewDebtService(db, nil)

	fmt.Println("=== Debt Ledger - Regeneration Flow Example ===")
	fmt.Println()

	// Step 1: Create a step-up contract
	fmt.Println("Step 1: Creating Step-Up Contract")
	fmt.Println("---------------------------------")

	debt := models.NewDebtContractBuilder().
		WithName("Appliance credit").
		WithPrincipal(decimal.NewFromInt(6000000)).
		WithDateRange(
			time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		).
		WithDueDay(10).
		WithStepUpTiers(
			[]models.StepUpTier{
				{StartMonth: 1, EndMonth: 3, Amount: decimal.NewFromInt(900000)},
			},
			decimal.NewFromInt(1100000),
		).
		Build()

	schedule, err := debtService.CreateDebt(ctx, debt)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("  ✓ %d periods generated (months 1-3 at 900,000, rest at the 1,100,000 fallback)\n", len(schedule))
	fmt.Printf("  ✓ Implied annual rate: %s%%\n\n", debt.ImpliedAnnualRate())

	// Step 2: Record a payment
	fmt.Println("Step 2: Recording Payment on Period 2")
	fmt.Println("-------------------------------------")

	if err := debtService.MarkInstallmentPaid(ctx, debt.ID, 2); err != nil {
		log.Fatal(err)
	}
	fmt.Println("  ✓ Period 2 marked paid")
	fmt.Println()

	// Step 3 + 4: Edit and regenerate
	fmt.Println("Step 3: Editing Contract and Regenerating")
	fmt.Println("-----------------------------------------")

	staleVersion := debt.ScheduleVersion

	debt.EndDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC) // 6 -> 12 months
	debt.InstallmentAmount = decimal.NewFromInt(1200000)                  // Raise the fallback

	regenerated, warnings, err := debtService.SaveDebt(ctx, debt)
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range warnings {
		log.Printf("integrity warning: %s", w)
	}

	fmt.Printf("  ✓ Schedule regenerated: %d periods\n", len(regenerated))
	for _, p := range regenerated {
		marker := ""
		if p.Status != models.InstallmentStatusPending {
			marker = fmt.Sprintf("  <- %s (preserved)", p.Status)
		}
		fmt.Printf("    period %2d  due %s  amount %s%s\n",
			p.Period, p.DueDate.Format("2006-01-02"), p.Amount, marker)
	}
	fmt.Println()

	// Step 5: Stale edit rejection
	fmt.Println("Step 4: Concurrent Edit Protection")
	fmt.Println("----------------------------------")

	stale := *debt
	stale.ScheduleVersion = staleVersion // Pretend another device never saw the edit
	stale.InstallmentAmount = decimal.NewFromInt(999999)

	_, _, err = debtService.SaveDebt(ctx, &stale)
	if errors.Is(err, services.ErrStaleSchedule) {
		fmt.Println("  ✓ Stale edit rejected: reload the contract and retry")
	} else if err != nil {
		log.Fatal(err)
	} else {
		fmt.Println("  ✗ Stale edit was not rejected")
	}

	fmt.Println()
	fmt.Println("=== Example Complete ===")
}

// dsn returns the database connection string
func dsn() string {
	if v := os.Getenv("DEBT_LEDGER_DSN"); v != "" {
		return v
	}
	return "postgres://localhost/debtledger?sslmode=disable"
}
