// Package sequence keeps the per-day patient ordinals dense and gap-free.
//
// Every read or write of a day's ordinals happens inside one DayTx, which the
// store opens under a transaction-scoped advisory lock for that date. Two
// terminals registering patients for the same day are therefore serialized,
// and a void together with its renumbering commits or fails as one unit.
package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
)

//go:generate mockgen -source=manager.go -destination=repository_mock.go -package=sequence
type Repository interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*billing.Record, error)
	BeginDay(ctx context.Context, date time.Time) (DayTx, error)
}

// DayTx is a unit of work scoped to one date and holding that date's lock.
type DayTx interface {
	MaxOrdinal(ctx context.Context) (int, error)
	InsertRecord(ctx context.Context, rec *billing.Record) error
	LockRecord(ctx context.Context, id uuid.UUID) (*billing.Record, error)
	MarkVoided(ctx context.Context, id uuid.UUID, void billing.Void) error
	// ShiftDown decrements every active numbered ordinal above the given one.
	ShiftDown(ctx context.Context, above int) (int, error)
	// Slots lists the active non-mobile records in arrival order.
	Slots(ctx context.Context) ([]Slot, error)
	SetOrdinals(ctx context.Context, ordinals map[uuid.UUID]int) error
	AppendAudit(ctx context.Context, entry AuditEntry) error
	Commit() error
	Rollback() error
}

// Slot is a numberable record as seen by the sequence.
type Slot struct {
	RecordID  uuid.UUID
	Ordinal   *int
	CreatedAt time.Time
}

type Action string

const (
	ActionCreate   Action = "create"
	ActionVoid     Action = "void"
	ActionRenumber Action = "renumber"
)

type AuditEntry struct {
	RecordID *uuid.UUID
	Date     time.Time
	Action   Action
	Actor    actor.Actor
	Detail   string
}

type Manager struct {
	repo  Repository
	clock calendar.Clock
}

func NewManager(repo Repository, clock calendar.Clock) *Manager {
	return &Manager{repo: repo, clock: clock}
}

func (m *Manager) begin(ctx context.Context, date time.Time) (DayTx, error) {
	tx, err := m.repo.BeginDay(ctx, calendar.Day(date))
	if err != nil {
		return nil, apperr.Store("locking day", err)
	}

	return tx, nil
}

func commit(tx DayTx) error {
	if err := tx.Commit(); err != nil {
		return apperr.Store("committing day", err)
	}

	return nil
}

// AssignNext returns the ordinal the next numbered record of the date would get.
func (m *Manager) AssignNext(ctx context.Context, date time.Time) (int, error) {
	tx, err := m.begin(ctx, date)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	last, err := tx.MaxOrdinal(ctx)
	if err != nil {
		return 0, apperr.Store("reading max ordinal", err)
	}

	return last + 1, nil
}

// Register inserts rec, numbering it first when it belongs to the sequence.
// Assignment and insert share the day lock, so concurrent callers never
// receive the same ordinal.
func (m *Manager) Register(ctx context.Context, rec *billing.Record, by actor.Actor) error {
	rec.Date = calendar.Day(rec.Date)

	tx, err := m.begin(ctx, rec.Date)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec.Ordinal = nil

	if rec.Numbered() {
		last, err := tx.MaxOrdinal(ctx)
		if err != nil {
			return apperr.Store("reading max ordinal", err)
		}

		rec.Ordinal = new(last + 1)
	}

	if err := tx.InsertRecord(ctx, rec); err != nil {
		return apperr.Store("inserting record", err)
	}

	entry := AuditEntry{
		RecordID: &rec.ID,
		Date:     rec.Date,
		Action:   ActionCreate,
		Actor:    by,
		Detail:   ordinalDetail(rec.Ordinal),
	}
	if err := tx.AppendAudit(ctx, entry); err != nil {
		return apperr.Store("writing audit entry", err)
	}

	if err := verify(ctx, tx, rec.Date); err != nil {
		return err
	}

	return commit(tx)
}

// VoidAndRenumber annuls a record and closes the gap it leaves. It returns
// how many later records moved down by one.
func (m *Manager) VoidAndRenumber(ctx context.Context, id uuid.UUID, reason string, by actor.Actor) (int, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, apperr.Invalid("reason", "a void must state why")
	}

	if err := by.Validate(); err != nil {
		return 0, err
	}

	rec, err := m.repo.GetRecord(ctx, id)
	if err != nil {
		return 0, apperr.Store("getting record", err)
	}

	if rec.IsVoided() {
		return 0, apperr.ErrAlreadyVoided
	}

	tx, err := m.begin(ctx, rec.Date)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Re-read under the lock; another terminal may have voided it meanwhile.
	rec, err = tx.LockRecord(ctx, id)
	if err != nil {
		return 0, apperr.Store("locking record", err)
	}

	if rec.IsVoided() {
		return 0, apperr.ErrAlreadyVoided
	}

	original := rec.Ordinal

	void := billing.Void{Reason: reason, By: by.ID, At: m.clock.Now()}
	if err := tx.MarkVoided(ctx, id, void); err != nil {
		return 0, apperr.Store("voiding record", err)
	}

	shifted := 0

	if original != nil {
		shifted, err = tx.ShiftDown(ctx, *original)
		if err != nil {
			return 0, apperr.Store("renumbering records", err)
		}
	}

	entry := AuditEntry{
		RecordID: &id,
		Date:     rec.Date,
		Action:   ActionVoid,
		Actor:    by,
		Detail:   fmt.Sprintf("%s; reason: %s; shifted: %d", ordinalDetail(original), reason, shifted),
	}
	if err := tx.AppendAudit(ctx, entry); err != nil {
		return 0, apperr.Store("writing audit entry", err)
	}

	if err := verify(ctx, tx, rec.Date); err != nil {
		return 0, err
	}

	if err := commit(tx); err != nil {
		return 0, err
	}

	slog.Info("record voided",
		"record_id", id,
		"date", rec.Date.Format(time.DateOnly),
		"ordinal", ordinalDetail(original),
		"renumbered", shifted,
		"actor", by.ID,
	)

	return shifted, nil
}

// RenumberAll rebuilds the date's ordinals from arrival order, ignoring the
// current values. It returns how many records changed; a second run returns 0.
func (m *Manager) RenumberAll(ctx context.Context, date time.Time, by actor.Actor) (int, error) {
	if err := by.Validate(); err != nil {
		return 0, err
	}

	if !by.IsAdmin() {
		return 0, apperr.ErrForbidden
	}

	day := calendar.Day(date)

	tx, err := m.begin(ctx, day)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	slots, err := tx.Slots(ctx)
	if err != nil {
		return 0, apperr.Store("listing slots", err)
	}

	changes := Plan(slots)

	if len(changes) > 0 {
		if err := tx.SetOrdinals(ctx, changes); err != nil {
			return 0, apperr.Store("setting ordinals", err)
		}
	}

	entry := AuditEntry{
		Date:   day,
		Action: ActionRenumber,
		Actor:  by,
		Detail: fmt.Sprintf("records: %d; changed: %d", len(slots), len(changes)),
	}
	if err := tx.AppendAudit(ctx, entry); err != nil {
		return 0, apperr.Store("writing audit entry", err)
	}

	if err := verify(ctx, tx, day); err != nil {
		return 0, err
	}

	if err := commit(tx); err != nil {
		return 0, err
	}

	slog.Info("day renumbered", "date", day.Format(time.DateOnly), "changed", len(changes), "actor", by.ID)

	return len(changes), nil
}

// Plan assigns 1..N in arrival order (created_at, then id) and returns only
// the records whose ordinal differs from that assignment.
func Plan(slots []Slot) map[uuid.UUID]int {
	ordered := slices.Clone(slots)
	slices.SortStableFunc(ordered, func(a, b Slot) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.RecordID.String(), b.RecordID.String())
	})

	changes := make(map[uuid.UUID]int)

	for i, s := range ordered {
		want := i + 1
		if s.Ordinal == nil || *s.Ordinal != want {
			changes[s.RecordID] = want
		}
	}

	return changes
}

// Verify checks that the active numbered records of the date hold exactly 1..N.
func (m *Manager) Verify(ctx context.Context, date time.Time) error {
	day := calendar.Day(date)

	tx, err := m.begin(ctx, day)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	return verify(ctx, tx, day)
}

func verify(ctx context.Context, tx DayTx, day time.Time) error {
	slots, err := tx.Slots(ctx)
	if err != nil {
		return apperr.Store("listing slots", err)
	}

	if detail := Check(slots); detail != "" {
		return &apperr.ConsistencyError{Date: day, Detail: detail}
	}

	return nil
}

// Check describes why the slots do not form 1..N, or returns "" when they do.
func Check(slots []Slot) string {
	n := len(slots)
	seen := make(map[int]bool, n)

	var problems []string

	for _, s := range slots {
		switch {
		case s.Ordinal == nil:
			problems = append(problems, fmt.Sprintf("record %s has no ordinal", s.RecordID))
		case *s.Ordinal < 1 || *s.Ordinal > n:
			problems = append(problems, fmt.Sprintf("ordinal %d out of range 1..%d", *s.Ordinal, n))
		case seen[*s.Ordinal]:
			problems = append(problems, fmt.Sprintf("ordinal %d is duplicated", *s.Ordinal))
		default:
			seen[*s.Ordinal] = true
		}
	}

	return strings.Join(problems, "; ")
}

func ordinalDetail(ordinal *int) string {
	if ordinal == nil {
		return "unnumbered"
	}

	return fmt.Sprintf("#%d", *ordinal)
}
