package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/google/uuid"
)

// ErrStaleSchedule is returned when a regeneration races a concurrent edit of
// the same contract. The caller should reload the debt and retry.
var ErrStaleSchedule = errors.New("debt schedule was modified concurrently")

// DebtService manages debt contracts and orchestrates schedule generation:
// every create or edit runs build -> reconcile -> persist as one unit.
type DebtService struct {
	db               *sql.DB
	scheduleService  *ScheduleService
	reconcileService *ReconcileService
	storeService     *InstallmentStoreService
	cache            ScheduleCache
}

// NewDebtService creates a new debt service. The cache may be nil, in which
// case summaries are always recomputed from the store.
func NewDebtService(db *sql.DB, cache ScheduleCache) *DebtService {
	return &DebtService{
		db:               db,
		scheduleService:  NewScheduleService(),
		reconcileService: NewReconcileService(),
		storeService:     NewInstallmentStoreService(db),
		cache:            cache,
	}
}

// Installments exposes the installment store for status and notes updates
func (s *DebtService) Installments() *InstallmentStoreService {
	return s.storeService
}

// CreateDebt validates and persists a new contract together with its first
// generated schedule
func (s *DebtService) CreateDebt(ctx context.Context, debt *models.DebtContract) ([]models.InstallmentPeriod, error) {
	candidate, err := s.scheduleService.BuildSchedule(debt)
	if err != nil {
		return nil, err
	}

	// First generation reconciles against an empty set; all periods come
	// through as pending
	schedule, _ := s.reconcileService.Reconcile(candidate, nil)

	tiers, err := marshalTiers(debt.StepUpTiers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode step-up tiers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO debts (
			id, name, principal, start_date, end_date, due_day, strategy,
			installment_amount, step_up_tiers, schedule_version, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	if debt.ID == uuid.Nil {
		debt.ID = uuid.New()
	}
	debt.ScheduleVersion = 1

	_, err = tx.ExecContext(ctx, query,
		debt.ID, debt.Name, debt.Principal, debt.StartDate, debt.EndDate,
		debt.DueDay, debt.Strategy, debt.InstallmentAmount, tiers,
		debt.ScheduleVersion, debt.Status, debt.Notes, debt.CreatedAt, debt.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert debt: %w", err)
	}

	if err := s.storeService.ReplaceInstallments(ctx, tx, debt.ID, schedule); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit debt creation: %w", err)
	}

	return schedule, nil
}

// GetDebt retrieves a debt contract by id
func (s *DebtService) GetDebt(ctx context.Context, debtID uuid.UUID) (*models.DebtContract, error) {
	query := `
		SELECT id, name, principal, start_date, end_date, due_day, strategy,
		       installment_amount, step_up_tiers, schedule_version, status, notes,
		       created_at, updated_at
		FROM debts
		WHERE id = $1
	`

	debt := &models.DebtContract{}
	var tiers []byte
	err := s.db.QueryRowContext(ctx, query, debtID).Scan(
		&debt.ID, &debt.Name, &debt.Principal, &debt.StartDate, &debt.EndDate,
		&debt.DueDay, &debt.Strategy, &debt.InstallmentAmount, &tiers,
		&debt.ScheduleVersion, &debt.Status, &debt.Notes,
		&debt.CreatedAt, &debt.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}

	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &debt.StepUpTiers); err != nil {
			return nil, fmt.Errorf("failed to decode step-up tiers: %w", err)
		}
	}

	return debt, nil
}

// SaveDebt applies a contract edit and regenerates the schedule, preserving
// caller-owned installment state through reconciliation. The debt's
// ScheduleVersion must match the persisted one or ErrStaleSchedule is
// returned.
func (s *DebtService) SaveDebt(ctx context.Context, debt *models.DebtContract) ([]models.InstallmentPeriod, []IntegrityWarning, error) {
	candidate, err := s.scheduleService.BuildSchedule(debt)
	if err != nil {
		return nil, nil, err
	}

	tiers, err := marshalTiers(debt.StepUpTiers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode step-up tiers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	// Optimistic guard: the version bump only lands if nobody regenerated
	// since this edit's snapshot was read
	query := `
		UPDATE debts
		SET name = $1, principal = $2, start_date = $3, end_date = $4,
		    due_day = $5, strategy = $6, installment_amount = $7,
		    step_up_tiers = $8, notes = $9, updated_at = $10,
		    schedule_version = schedule_version + 1
		WHERE id = $11 AND schedule_version = $12
	`

	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		debt.Name, debt.Principal, debt.StartDate, debt.EndDate,
		debt.DueDay, debt.Strategy, debt.InstallmentAmount, tiers,
		debt.Notes, now, debt.ID, debt.ScheduleVersion,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update debt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, nil, err
	}
	if rows == 0 {
		return nil, nil, ErrStaleSchedule
	}

	existing, err := s.storeService.getInstallmentsByDebtTx(ctx, tx, debt.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read existing installments: %w", err)
	}

	schedule, warnings := s.reconcileService.Reconcile(candidate, existing)

	if err := s.storeService.ReplaceInstallments(ctx, tx, debt.ID, schedule); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit schedule regeneration: %w", err)
	}

	debt.ScheduleVersion++
	debt.UpdatedAt = now

	s.invalidateSummary(ctx, debt.ID)

	return schedule, warnings, nil
}

// MarkInstallmentPaid records a payment on an installment
func (s *DebtService) MarkInstallmentPaid(ctx context.Context, debtID uuid.UUID, period int) error {
	if err := s.storeService.UpdateInstallmentStatus(ctx, debtID, period, models.InstallmentStatusPaid); err != nil {
		return err
	}
	s.invalidateSummary(ctx, debtID)
	return nil
}

// ResetInstallment manually reverts a paid installment to pending
func (s *DebtService) ResetInstallment(ctx context.Context, debtID uuid.UUID, period int) error {
	if err := s.storeService.UpdateInstallmentStatus(ctx, debtID, period, models.InstallmentStatusPending); err != nil {
		return err
	}
	s.invalidateSummary(ctx, debtID)
	return nil
}

// GetScheduleSummary returns aggregate statistics for a debt's schedule,
// served from cache when available
func (s *DebtService) GetScheduleSummary(ctx context.Context, debtID uuid.UUID) (*models.ScheduleSummary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.GetSummary(ctx, debtID); ok {
			return summary, nil
		}
	}

	installments, err := s.storeService.GetInstallmentsByDebt(ctx, debtID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}

	summary := models.CalculateScheduleSummary(installments)
	if summary.DebtID == uuid.Nil {
		summary.DebtID = debtID
	}

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, summary); err != nil {
			return summary, nil // Cache write failure is not fatal
		}
	}

	return summary, nil
}

// invalidateSummary drops the cached summary after any mutation
func (s *DebtService) invalidateSummary(ctx context.Context, debtID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, debtID)
	}
}

// marshalTiers encodes step-up tiers for storage; nil tiers store as NULL
func marshalTiers(tiers []models.StepUpTier) ([]byte, error) {
	if len(tiers) == 0 {
		return nil, nil
	}
	return json.Marshal(tiers)
}
