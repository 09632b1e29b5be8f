package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/debtwise/debt-ledger/src/services"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// This example demonstrates the full schedule lifecycle for a fixed-installment
// debt:
// 1. Create a contract and generate its schedule
// 2. Record payments against early periods
// 3. Sweep overdue periods
// 4. Read the cached schedule summary and the implied flat rate

func main() {
	db, err := sql.Open("postgres", dsn())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := ensureSchema(ctx, db); err != nil {
		log.Fatal(err)
	}

	debtService := services.NewDebtService(db, newCache())

	fmt.Println("=== Debt Ledger - Schedule Flow Example ===")
	fmt.Println()

	// Step 1: Create the contract
	fmt.Println("Step 1: Creating Contract")
	fmt.Println("-------------------------")

	debt := models.NewDebtContractBuilder().
		WithName("Car loan").
		WithPrincipal(decimal.NewFromInt(12000000)).
		WithDateRange(
			time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		).
		WithDueDay(5).
		WithFixedInstallment(decimal.NewFromInt(1100000)).
		Build()

	schedule, err := debtService.CreateDebt(ctx, debt)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("  ✓ Contract %s: principal %s over %d months, implied rate %s%%\n\n",
		debt.Name, debt.Principal, debt.TenorMonths(), debt.ImpliedAnnualRate())

	printSchedule(schedule)

	// Step 2: Record payments
	fmt.Println("Step 2: Recording Payments")
	fmt.Println("--------------------------")

	for period := 1; period <= 2; period++ {
		if err := debtService.MarkInstallmentPaid(ctx, debt.ID, period); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  ✓ Period %d marked paid\n", period)
	}

	if err := debtService.Installments().SetInstallmentNotes(ctx, debt.ID, 2, "paid by bank transfer"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("  ✓ Note attached to period 2")
	fmt.Println()

	// Step 3: Overdue sweep
	fmt.Println("Step 3: Overdue Sweep")
	fmt.Println("---------------------")

	asOf := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	flipped, err := debtService.Installments().MarkOverdueInstallments(ctx, asOf)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("  ✓ %d pending installments past %s flipped to overdue\n\n", flipped, asOf.Format("2006-01-02"))

	// Step 4: Summary
	fmt.Println("Step 4: Schedule Summary")
	fmt.Println("------------------------")

	summary, err := debtService.GetScheduleSummary(ctx, debt.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("  Periods: %d total / %d paid / %d overdue / %d pending\n",
		summary.TotalPeriods, summary.PaidPeriods, summary.OverduePeriods, summary.PendingPeriods)
	fmt.Printf("  Total liability: %s (principal %s + interest %s)\n",
		summary.TotalAmount, summary.TotalPrincipal, summary.TotalInterest)
	fmt.Printf("  Remaining principal: %s\n", summary.RemainingPrincipal)
	if summary.NextDueDate != nil {
		fmt.Printf("  Next due date: %s\n", summary.NextDueDate.Format("2006-01-02"))
	}

	fmt.Println()
	fmt.Println("=== Example Complete ===")
}

// printSchedule renders the generated periods as a table
func printSchedule(schedule []models.InstallmentPeriod) {
	fmt.Println("  Period | Due Date   | Amount    | Principal | Interest | Balance")
	fmt.Println("  -------|------------|-----------|-----------|----------|--------")
	for _, p := range schedule {
		fmt.Printf("  %6d | %s | %9s | %9s | %8s | %s\n",
			p.Period, p.DueDate.Format("2006-01-02"), p.Amount, p.PrincipalPart, p.InterestPart, p.RemainingBalance)
	}
	fmt.Println()
}

// dsn returns the database connection string
func dsn() string {
	if v := os.Getenv("DEBT_LEDGER_DSN"); v != "" {
		return v
	}
	return "postgres://localhost/debtledger?sslmode=disable"
}

// newCache returns a redis-backed cache when DEBT_LEDGER_REDIS is set and an
// in-memory cache otherwise
func newCache() services.ScheduleCache {
	if addr := os.Getenv("DEBT_LEDGER_REDIS"); addr != "" {
		return services.NewRedisScheduleCache(addr, 10*time.Minute)
	}
	return services.NewMockScheduleCache()
}

// ensureSchema creates the tables the example needs
func ensureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS debts (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			principal NUMERIC NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			due_day INT NOT NULL,
			strategy TEXT NOT NULL,
			installment_amount NUMERIC NOT NULL,
			step_up_tiers JSONB,
			schedule_version BIGINT NOT NULL DEFAULT 1,
			status TEXT NOT NULL,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS installment_periods (
			id UUID PRIMARY KEY,
			debt_id UUID NOT NULL REFERENCES debts(id) ON DELETE CASCADE,
			period INT NOT NULL,
			due_date DATE NOT NULL,
			amount NUMERIC NOT NULL,
			principal_part NUMERIC NOT NULL,
			interest_part NUMERIC NOT NULL,
			remaining_balance NUMERIC NOT NULL,
			status TEXT NOT NULL,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (debt_id, period)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
