package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/google/uuid"
)

// InstallmentStoreService persists installment periods. It is the storage
// collaborator of the schedule engine: regeneration replaces the full set per
// debt, while status and notes are mutated row by row through the state
// machine on models.InstallmentPeriod.
type InstallmentStoreService struct {
	db *sql.DB
}

// NewInstallmentStoreService creates a new installment store service
func NewInstallmentStoreService(db *sql.DB) *InstallmentStoreService {
	return &InstallmentStoreService{db: db}
}

// installmentColumns is the canonical column list for installment scans
const installmentColumns = `
	id, debt_id, period, due_date, amount, principal_part, interest_part,
	remaining_balance, status, notes, created_at, updated_at
`

// GetInstallmentsByDebt retrieves all persisted installments for a debt,
// ordered ascending by period
func (s *InstallmentStoreService) GetInstallmentsByDebt(ctx context.Context, debtID uuid.UUID) ([]models.InstallmentPeriod, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installment_periods
		WHERE debt_id = $1
		ORDER BY period
	`

	rows, err := s.db.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInstallments(rows)
}

// getInstallmentsByDebtTx is the transaction-scoped variant used during
// schedule regeneration
func (s *InstallmentStoreService) getInstallmentsByDebtTx(ctx context.Context, tx *sql.Tx, debtID uuid.UUID) ([]models.InstallmentPeriod, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installment_periods
		WHERE debt_id = $1
		ORDER BY period
	`

	rows, err := tx.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInstallments(rows)
}

// scanInstallments reads installment rows into models
func scanInstallments(rows *sql.Rows) ([]models.InstallmentPeriod, error) {
	var installments []models.InstallmentPeriod
	for rows.Next() {
		var p models.InstallmentPeriod
		err := rows.Scan(
			&p.ID, &p.DebtID, &p.Period, &p.DueDate, &p.Amount, &p.PrincipalPart,
			&p.InterestPart, &p.RemainingBalance, &p.Status, &p.Notes,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		installments = append(installments, p)
	}
	return installments, rows.Err()
}

// ReplaceInstallments swaps the full installment set for a debt inside the
// given transaction. Only the reconciler's output should ever be written here:
// a raw builder result would wipe caller-owned state.
func (s *InstallmentStoreService) ReplaceInstallments(
	ctx context.Context,
	tx *sql.Tx,
	debtID uuid.UUID,
	installments []models.InstallmentPeriod,
) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM installment_periods WHERE debt_id = $1`, debtID); err != nil {
		return fmt.Errorf("failed to clear previous installments: %w", err)
	}

	query := `
		INSERT INTO installment_periods (
			id, debt_id, period, due_date, amount, principal_part, interest_part,
			remaining_balance, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for i := range installments {
		p := &installments[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}

		_, err := tx.ExecContext(ctx, query,
			p.ID, p.DebtID, p.Period, p.DueDate, p.Amount, p.PrincipalPart,
			p.InterestPart, p.RemainingBalance, p.Status, p.Notes,
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", p.Period, err)
		}
	}

	return nil
}

// UpdateInstallmentStatus transitions an installment to a new status, enforcing
// the pending/paid/overdue state machine
func (s *InstallmentStoreService) UpdateInstallmentStatus(
	ctx context.Context,
	debtID uuid.UUID,
	period int,
	newStatus models.InstallmentStatus,
) error {
	installment, err := s.getInstallment(ctx, debtID, period)
	if err != nil {
		return err
	}

	if !installment.CanTransitionTo(newStatus) {
		return fmt.Errorf("installment %d cannot transition from %s to %s", period, installment.Status, newStatus)
	}

	query := `
		UPDATE installment_periods
		SET status = $1, updated_at = $2
		WHERE debt_id = $3 AND period = $4
	`

	_, err = s.db.ExecContext(ctx, query, newStatus, time.Now(), debtID, period)
	return err
}

// SetInstallmentNotes attaches free-form notes to an installment. Notes are
// caller-owned and survive schedule regeneration.
func (s *InstallmentStoreService) SetInstallmentNotes(
	ctx context.Context,
	debtID uuid.UUID,
	period int,
	notes string,
) error {
	query := `
		UPDATE installment_periods
		SET notes = $1, updated_at = $2
		WHERE debt_id = $3 AND period = $4
	`

	result, err := s.db.ExecContext(ctx, query, notes, time.Now(), debtID, period)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("installment not found: debt %s period %d", debtID, period)
	}

	return nil
}

// MarkOverdueInstallments flips every pending installment whose due date has
// passed to overdue and returns how many rows changed. Intended to run as a
// periodic sweep.
func (s *InstallmentStoreService) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE installment_periods
		SET status = $1, updated_at = $2
		WHERE status = $3 AND due_date < $4
	`

	result, err := s.db.ExecContext(ctx, query,
		models.InstallmentStatusOverdue,
		time.Now(),
		models.InstallmentStatusPending,
		asOf,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// getInstallment retrieves a single installment by its (debt, period) key
func (s *InstallmentStoreService) getInstallment(ctx context.Context, debtID uuid.UUID, period int) (*models.InstallmentPeriod, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installment_periods
		WHERE debt_id = $1 AND period = $2
	`

	var p models.InstallmentPeriod
	err := s.db.QueryRowContext(ctx, query, debtID, period).Scan(
		&p.ID, &p.DebtID, &p.Period, &p.DueDate, &p.Amount, &p.PrincipalPart,
		&p.InterestPart, &p.RemainingBalance, &p.Status, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("installment not found: debt %s period %d", debtID, period)
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}
