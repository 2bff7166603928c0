package expense

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	CreateExpense(ctx context.Context, e *Expense) error
	ListExpenses(ctx context.Context, date time.Time) ([]*Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Date    time.Time
	Amount  decimal.Decimal
	Concept string
	Method  Method
}

func (s *Service) Create(ctx context.Context, params CreateParams, by actor.Actor) (*Expense, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}

	if params.Date.IsZero() {
		return nil, apperr.Invalid("date", "is required")
	}

	if !params.Amount.IsPositive() {
		return nil, apperr.Invalid("amount", "must be greater than zero")
	}

	if err := apperr.Required("concept", params.Concept); err != nil {
		return nil, err
	}

	if params.Method == "" {
		params.Method = MethodCash
	}

	if !params.Method.IsValid() {
		return nil, apperr.Invalid("method", "unknown method "+string(params.Method))
	}

	e := &Expense{
		Date:      calendar.Day(params.Date),
		Amount:    params.Amount,
		Concept:   strings.TrimSpace(params.Concept),
		Method:    params.Method,
		CreatedBy: by.ID,
	}

	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, apperr.Store("creating expense", err)
	}

	return e, nil
}

func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]*Expense, error) {
	expenses, err := s.repo.ListExpenses(ctx, calendar.Day(date))
	if err != nil {
		return nil, apperr.Store("listing expenses", err)
	}

	return expenses, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, by actor.Actor) error {
	if err := by.Validate(); err != nil {
		return err
	}

	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return apperr.Store("deleting expense", err)
	}

	slog.Info("expense deleted", "expense_id", id, "actor", by.ID)

	return nil
}
