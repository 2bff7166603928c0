package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateExpense(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (day, amount, concept, method, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, e.Date, e.Amount, e.Concept, e.Method, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (s *Store) ListExpenses(ctx context.Context, day time.Time) ([]*expense.Expense, error) {
	return QueryByDate(ctx, s.db, day)
}

// QueryByDate lists the expenses of a day in entry order.
func QueryByDate(ctx context.Context, q Querier, day time.Time) ([]*expense.Expense, error) {
	query := `
		SELECT id, day, amount, concept, method, created_by, created_at
		FROM expenses
		WHERE day = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense

	for rows.Next() {
		var (
			e      expense.Expense
			method string
		)

		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Concept, &method, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		e.Method = expense.Method(method)
		expenses = append(expenses, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expenses: %w", err)
	}

	return expenses, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	if n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
