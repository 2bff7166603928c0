package reconciliation

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reconciliation
type Repository interface {
	// LoadDay reads the day's active records and its expenses from one
	// consistent snapshot.
	LoadDay(ctx context.Context, date time.Time) (*Ledger, error)
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	GetSnapshot(ctx context.Context, date time.Time) (*Snapshot, error)
}

type Ledger struct {
	Records  []*billing.Record
	Expenses []*expense.Expense
}

// Snapshot is a closed day.
type Snapshot struct {
	Result
	ClosedBy  string
	CreatedAt time.Time
}

// Report is everything the spreadsheet sink renders for a day.
type Report struct {
	Result          Result
	ByPaymentMethod []MethodTotal
	CashExpenses    decimal.Decimal
	Expenses        []*expense.Expense
}

// CountedInput is what the operator typed at the till, still unparsed.
type CountedInput struct {
	Cash    string
	Card    string
	Deposit string
}

// Parse validates every channel and reports the first field that fails.
func (in CountedInput) Parse() (Amounts, error) {
	var (
		out Amounts
		err error
	)

	if out.Cash, err = parseCounted("counted.cash", in.Cash); err != nil {
		return Amounts{}, err
	}

	if out.Card, err = parseCounted("counted.card", in.Card); err != nil {
		return Amounts{}, err
	}

	if out.Deposit, err = parseCounted("counted.deposit", in.Deposit); err != nil {
		return Amounts{}, err
	}

	return out, nil
}

// Commas are only accepted as thousands separators; "250,00" is rejected
// rather than read as 25000.
var groupedAmount = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// countedPlaces matches the precision of the stored snapshot columns.
const countedPlaces = 3

func parseCounted(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperr.Invalid(field, "is required")
	}

	if strings.Contains(raw, ",") {
		if !groupedAmount.MatchString(raw) {
			return decimal.Zero, apperr.Invalid(field, "is not a number")
		}

		raw = strings.ReplaceAll(raw, ",", "")
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Invalid(field, "is not a number")
	}

	if v.IsNegative() {
		return decimal.Zero, apperr.Invalid(field, "cannot be negative")
	}

	if !v.Equal(v.Round(countedPlaces)) {
		return decimal.Zero, apperr.Invalid(field, "has more than 3 decimal places")
	}

	return v, nil
}

type Service struct {
	repo      Repository
	tolerance decimal.Decimal
}

func NewService(repo Repository, tolerance decimal.Decimal) *Service {
	return &Service{repo: repo, tolerance: ClampTolerance(tolerance)}
}

func (s *Service) load(ctx context.Context, date time.Time) (*Ledger, Expected, error) {
	day := calendar.Day(date)

	ledger, err := s.repo.LoadDay(ctx, day)
	if err != nil {
		return nil, Expected{}, apperr.Store("loading day", err)
	}

	return ledger, ComputeExpected(day, ledger.Records, ledger.Expenses), nil
}

func (s *Service) Expected(ctx context.Context, date time.Time) (Expected, error) {
	_, exp, err := s.load(ctx, date)
	return exp, err
}

// Preview reconciles without persisting anything.
func (s *Service) Preview(ctx context.Context, date time.Time, in CountedInput) (Result, error) {
	counted, err := in.Parse()
	if err != nil {
		return Result{}, err
	}

	_, exp, err := s.load(ctx, date)
	if err != nil {
		return Result{}, err
	}

	return Reconcile(exp, counted, s.tolerance), nil
}

// Close reconciles the day and stores the result. A day closes once.
func (s *Service) Close(ctx context.Context, date time.Time, in CountedInput, by actor.Actor) (*Snapshot, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}

	res, err := s.Preview(ctx, date, in)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Result: res, ClosedBy: by.ID}
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return nil, apperr.Store("saving snapshot", err)
	}

	slog.Info("day closed",
		"date", res.Date.Format(time.DateOnly),
		"balanced", res.IsBalanced,
		"cash_diff", res.Difference.Cash.String(),
		"card_diff", res.Difference.Card.String(),
		"deposit_diff", res.Difference.Deposit.String(),
		"actor", by.ID,
	)

	return snap, nil
}

func (s *Service) Snapshot(ctx context.Context, date time.Time) (*Snapshot, error) {
	snap, err := s.repo.GetSnapshot(ctx, calendar.Day(date))
	if err != nil {
		return nil, apperr.Store("getting snapshot", err)
	}

	return snap, nil
}

// Report builds the sink value for a day from freshly counted amounts.
func (s *Service) Report(ctx context.Context, date time.Time, in CountedInput) (*Report, error) {
	counted, err := in.Parse()
	if err != nil {
		return nil, err
	}

	ledger, exp, err := s.load(ctx, date)
	if err != nil {
		return nil, err
	}

	return &Report{
		Result:          Reconcile(exp, counted, s.tolerance),
		ByPaymentMethod: exp.ByPaymentMethod,
		CashExpenses:    exp.CashExpenses,
		Expenses:        ledger.Expenses,
	}, nil
}
