package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	billingstore "github.com/MrJamesThe3rd/frontdesk/internal/billing/store"
	expensestore "github.com/MrJamesThe3rd/frontdesk/internal/expense/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadDay reads records and expenses inside one repeatable-read transaction so
// both come from the same snapshot.
func (s *Store) LoadDay(ctx context.Context, day time.Time) (*reconciliation.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning read tx: %w", err)
	}
	defer tx.Rollback()

	records, err := billingstore.QueryRecords(ctx, tx, billing.ListFilter{Date: &day})
	if err != nil {
		return nil, err
	}

	expenses, err := expensestore.QueryByDate(ctx, tx, day)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing read tx: %w", err)
	}

	return &reconciliation.Ledger{Records: records, Expenses: expenses}, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap *reconciliation.Snapshot) error {
	query := `
		INSERT INTO reconciliation_snapshots (
			day, expected_cash, expected_card, expected_deposit,
			counted_cash, counted_card, counted_deposit,
			is_balanced, total_revenue, total_expenses, tolerance, closed_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (day) DO NOTHING
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		snap.Date,
		snap.Expected.Cash,
		snap.Expected.Card,
		snap.Expected.Deposit,
		snap.Counted.Cash,
		snap.Counted.Card,
		snap.Counted.Deposit,
		snap.IsBalanced,
		snap.TotalRevenue,
		snap.TotalExpenses,
		snap.Tolerance,
		snap.ClosedBy,
	).Scan(&snap.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrAlreadyClosed
		}

		return fmt.Errorf("saving snapshot: %w", err)
	}

	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, day time.Time) (*reconciliation.Snapshot, error) {
	query := `
		SELECT day, expected_cash, expected_card, expected_deposit,
		       counted_cash, counted_card, counted_deposit,
		       is_balanced, total_revenue, total_expenses, tolerance, closed_by, created_at
		FROM reconciliation_snapshots
		WHERE day = $1
	`

	var snap reconciliation.Snapshot

	err := s.db.QueryRowContext(ctx, query, day).Scan(
		&snap.Date,
		&snap.Expected.Cash,
		&snap.Expected.Card,
		&snap.Expected.Deposit,
		&snap.Counted.Cash,
		&snap.Counted.Card,
		&snap.Counted.Deposit,
		&snap.IsBalanced,
		&snap.TotalRevenue,
		&snap.TotalExpenses,
		&snap.Tolerance,
		&snap.ClosedBy,
		&snap.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	snap.Difference = snap.Counted.Sub(snap.Expected)

	return &snap, nil
}
