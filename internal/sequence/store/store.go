package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	billingstore "github.com/MrJamesThe3rd/frontdesk/internal/billing/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*billing.Record, error) {
	return billingstore.GetRecordWith(ctx, s.db, id)
}

func dayLockKey(day time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte("ordinal"))
	h.Write([]byte{0})
	h.Write([]byte(day.Format("2006-01-02")))

	return int64(h.Sum64())
}

// BeginDay opens a transaction holding the advisory lock of the date. The lock
// is released when the transaction ends.
func (s *Store) BeginDay(ctx context.Context, day time.Time) (sequence.DayTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning day tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", dayLockKey(day)); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("acquiring day lock: %w", err)
	}

	return &dayTx{tx: tx, day: day}, nil
}

type dayTx struct {
	tx  *sql.Tx
	day time.Time
}

func (d *dayTx) Commit() error   { return d.tx.Commit() }
func (d *dayTx) Rollback() error { return d.tx.Rollback() }

func (d *dayTx) MaxOrdinal(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(MAX(ordinal), 0)
		FROM billing_records
		WHERE day = $1 AND voided_at IS NULL AND NOT is_mobile
	`

	var last int
	if err := d.tx.QueryRowContext(ctx, query, d.day).Scan(&last); err != nil {
		return 0, fmt.Errorf("reading max ordinal: %w", err)
	}

	return last, nil
}

func (d *dayTx) InsertRecord(ctx context.Context, rec *billing.Record) error {
	return billingstore.InsertRecord(ctx, d.tx, rec)
}

func (d *dayTx) LockRecord(ctx context.Context, id uuid.UUID) (*billing.Record, error) {
	var locked uuid.UUID

	err := d.tx.QueryRowContext(ctx,
		`SELECT id FROM billing_records WHERE id = $1 AND day = $2 FOR UPDATE`, id, d.day,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("locking record: %w", err)
	}

	return billingstore.GetRecordWith(ctx, d.tx, id)
}

func (d *dayTx) MarkVoided(ctx context.Context, id uuid.UUID, void billing.Void) error {
	query := `
		UPDATE billing_records
		SET voided_at = $1, void_reason = $2, voided_by = $3, ordinal = NULL, updated_at = NOW()
		WHERE id = $4 AND voided_at IS NULL
	`

	res, err := d.tx.ExecContext(ctx, query, void.At, void.Reason, void.By, id)
	if err != nil {
		return fmt.Errorf("voiding record: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrAlreadyVoided
	}

	return nil
}

func (d *dayTx) ShiftDown(ctx context.Context, above int) (int, error) {
	query := `
		UPDATE billing_records
		SET ordinal = ordinal - 1, updated_at = NOW()
		WHERE day = $1 AND ordinal > $2 AND voided_at IS NULL AND NOT is_mobile
	`

	res, err := d.tx.ExecContext(ctx, query, d.day, above)
	if err != nil {
		return 0, fmt.Errorf("shifting ordinals: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting shifted ordinals: %w", err)
	}

	return int(n), nil
}

func (d *dayTx) Slots(ctx context.Context) ([]sequence.Slot, error) {
	query := `
		SELECT id, ordinal, created_at
		FROM billing_records
		WHERE day = $1 AND voided_at IS NULL AND NOT is_mobile
		ORDER BY created_at ASC, id ASC
	`

	rows, err := d.tx.QueryContext(ctx, query, d.day)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	var slots []sequence.Slot

	for rows.Next() {
		var (
			slot    sequence.Slot
			ordinal sql.NullInt64
		)

		if err := rows.Scan(&slot.RecordID, &ordinal, &slot.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}

		if ordinal.Valid {
			slot.Ordinal = new(int(ordinal.Int64))
		}

		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}

	return slots, nil
}

// SetOrdinals rewrites the given ordinals in one statement. Intermediate
// duplicates are fine because the (day, ordinal) unique constraint is deferred
// to commit.
func (d *dayTx) SetOrdinals(ctx context.Context, ordinals map[uuid.UUID]int) error {
	if len(ordinals) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(ordinals))
	for id := range ordinals {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	args := []any{d.day}
	cases := make([]string, 0, len(ids))
	in := make([]string, 0, len(ids))

	for _, id := range ids {
		args = append(args, id, ordinals[id])
		idArg, ordArg := len(args)-1, len(args)
		cases = append(cases, fmt.Sprintf("WHEN $%d::uuid THEN $%d::int", idArg, ordArg))
		in = append(in, fmt.Sprintf("$%d::uuid", idArg))
	}

	query := fmt.Sprintf(`
		UPDATE billing_records
		SET ordinal = CASE id %s END, updated_at = NOW()
		WHERE day = $1 AND voided_at IS NULL AND NOT is_mobile AND id IN (%s)
	`, strings.Join(cases, " "), strings.Join(in, ", "))

	res, err := d.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("setting ordinals: %w", err)
	}

	if n, _ := res.RowsAffected(); int(n) != len(ids) {
		return fmt.Errorf("setting ordinals: updated %d of %d records", n, len(ids))
	}

	return nil
}

func (d *dayTx) AppendAudit(ctx context.Context, entry sequence.AuditEntry) error {
	query := `
		INSERT INTO record_audit (record_id, day, action, actor_id, actor_role, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := d.tx.ExecContext(ctx, query,
		entry.RecordID,
		entry.Date,
		entry.Action,
		entry.Actor.ID,
		entry.Actor.Role,
		entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}

	return nil
}
