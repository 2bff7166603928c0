package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence/store"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func beginDay(t *testing.T) (sequence.DayTx, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := store.New(db).BeginDay(context.Background(), day)
	require.NoError(t, err)

	return tx, mock
}

func TestBeginDay_LockFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	tx, err := store.New(db).BeginDay(context.Background(), day)
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDayTx_MaxOrdinal(t *testing.T) {
	tx, mock := beginDay(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(ordinal\), 0\) FROM billing_records WHERE day = \$1 AND voided_at IS NULL AND NOT is_mobile`).
		WithArgs(day).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(4)))

	got, err := tx.MaxOrdinal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDayTx_VoidAndShift(t *testing.T) {
	tx, mock := beginDay(t)

	id := uuid.New()
	at := day.Add(15 * time.Hour)

	mock.ExpectExec(`UPDATE billing_records SET voided_at = \$1, void_reason = \$2, voided_by = \$3, ordinal = NULL`).
		WithArgs(at, "duplicado", "maria", id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET ordinal = ordinal - 1 .* WHERE day = \$1 AND ordinal > \$2 AND voided_at IS NULL AND NOT is_mobile`).
		WithArgs(day, 2).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, tx.MarkVoided(context.Background(), id, billing.Void{Reason: "duplicado", By: "maria", At: at}))

	n, err := tx.ShiftDown(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDayTx_MarkVoided_AlreadyVoided(t *testing.T) {
	tx, mock := beginDay(t)

	mock.ExpectExec(`UPDATE billing_records SET voided_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := tx.MarkVoided(context.Background(), uuid.New(), billing.Void{Reason: "x", By: "maria", At: day})
	assert.ErrorIs(t, err, apperr.ErrAlreadyVoided)
}

func TestDayTx_LockRecord_OtherDay(t *testing.T) {
	tx, mock := beginDay(t)

	id := uuid.New()
	mock.ExpectQuery(`SELECT id FROM billing_records WHERE id = \$1 AND day = \$2 FOR UPDATE`).
		WithArgs(id, day).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := tx.LockRecord(context.Background(), id)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDayTx_Slots(t *testing.T) {
	tx, mock := beginDay(t)

	a, b := uuid.New(), uuid.New()
	t0 := day.Add(8 * time.Hour)

	mock.ExpectQuery(`SELECT id, ordinal, created_at FROM billing_records .* ORDER BY created_at ASC, id ASC`).
		WithArgs(day).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ordinal", "created_at"}).
			AddRow(a.String(), int64(1), t0).
			AddRow(b.String(), nil, t0.Add(time.Minute)))

	slots, err := tx.Slots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, a, slots[0].RecordID)
	assert.Equal(t, 1, *slots[0].Ordinal)
	assert.Nil(t, slots[1].Ordinal)
}

func TestDayTx_SetOrdinals(t *testing.T) {
	t.Run("single statement with a case per record", func(t *testing.T) {
		tx, mock := beginDay(t)

		id := uuid.New()

		mock.ExpectExec(`UPDATE billing_records SET ordinal = CASE id WHEN \$2::uuid THEN \$3::int END, updated_at = NOW\(\) WHERE day = \$1 AND voided_at IS NULL AND NOT is_mobile AND id IN \(\$2::uuid\)`).
			WithArgs(day, id, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, tx.SetOrdinals(context.Background(), map[uuid.UUID]int{id: 1}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when a record was voided meanwhile", func(t *testing.T) {
		tx, mock := beginDay(t)

		mock.ExpectExec(`SET ordinal = CASE id`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := tx.SetOrdinals(context.Background(), map[uuid.UUID]int{uuid.New(): 1, uuid.New(): 2})
		assert.ErrorContains(t, err, "updated 1 of 2")
	})

	t.Run("nothing to do", func(t *testing.T) {
		tx, mock := beginDay(t)

		require.NoError(t, tx.SetOrdinals(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDayTx_AppendAudit(t *testing.T) {
	tx, mock := beginDay(t)

	id := uuid.New()
	mock.ExpectExec(`INSERT INTO record_audit`).
		WithArgs(id, day, "void", "maria", "reception", "#2").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := tx.AppendAudit(context.Background(), sequence.AuditEntry{
		RecordID: &id,
		Date:     day,
		Action:   sequence.ActionVoid,
		Actor:    actor.Actor{ID: "maria", Role: actor.RoleReception},
		Detail:   "#2",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
