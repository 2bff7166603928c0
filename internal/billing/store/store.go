package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the queries below can run
// inside another store's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectRecordColumns = `
	r.id, r.day, r.ordinal, r.patient_name, r.doctor_id, COALESCE(d.name, ''), r.no_doctor_info,
	r.is_mobile, r.payment_method, r.charge_tier,
	r.imaging_plate, r.imaging_plate_fee, r.report_included, r.report_fee,
	r.void_reason, r.voided_by, r.voided_at, r.created_by, r.created_at, r.updated_at,
	li.id, li.study_id, s.name, s.commission_pct, li.price
`

const fromRecords = `
	FROM billing_records r
	LEFT JOIN doctors d ON d.id = r.doctor_id
	LEFT JOIN line_items li ON li.record_id = r.id
	LEFT JOIN studies s ON s.id = li.study_id
`

const orderRecords = ` ORDER BY r.day ASC, r.ordinal ASC NULLS LAST, r.created_at ASC, r.id ASC, li.position ASC`

// QueryRecords loads records with their line items. Voided records are
// skipped unless the filter asks for them.
func QueryRecords(ctx context.Context, q DBTX, filter billing.ListFilter) ([]*billing.Record, error) {
	var (
		conds []string
		args  []any
	)

	if filter.Date != nil {
		args = append(args, *filter.Date)
		conds = append(conds, fmt.Sprintf("r.day = $%d", len(args)))
	}

	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("r.day >= $%d", len(args)))
	}

	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("r.day <= $%d", len(args)))
	}

	if !filter.IncludeVoided {
		conds = append(conds, "r.voided_at IS NULL")
	}

	return queryRecords(ctx, q, conds, args...)
}

func queryRecords(ctx context.Context, q DBTX, conds []string, args ...any) ([]*billing.Record, error) {
	query := `SELECT ` + selectRecordColumns + fromRecords
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += orderRecords

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var (
		recs []*billing.Record
		last *billing.Record
	)

	for rows.Next() {
		rec, item, err := scanRecordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		if last == nil || last.ID != rec.ID {
			recs = append(recs, rec)
			last = rec
		}

		if item != nil {
			last.LineItems = append(last.LineItems, *item)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record rows: %w", err)
	}

	return recs, nil
}

// scanRecordRow reads one joined row: the record columns plus at most one line item.
func scanRecordRow(rows *sql.Rows) (*billing.Record, *billing.LineItem, error) {
	var rec billing.Record

	var (
		ordinal                sql.NullInt64
		method, tier           string
		voidReason, voidedBy   sql.NullString
		voidedAt               *time.Time
		itemID, studyID        *uuid.UUID
		studyName              sql.NullString
		commissionPct, itemAmt decimal.NullDecimal
	)

	if err := rows.Scan(
		&rec.ID, &rec.Date, &ordinal, &rec.PatientName, &rec.DoctorID, &rec.DoctorName, &rec.NoDoctorInfo,
		&rec.IsMobileService, &method, &tier,
		&rec.Extras.ImagingPlate, &rec.Extras.ImagingPlateFee, &rec.Extras.Report, &rec.Extras.ReportFee,
		&voidReason, &voidedBy, &voidedAt, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
		&itemID, &studyID, &studyName, &commissionPct, &itemAmt,
	); err != nil {
		return nil, nil, err
	}

	rec.PaymentMethod = billing.PaymentMethod(method)
	rec.ChargeTier = billing.ChargeTier(tier)

	if ordinal.Valid {
		rec.Ordinal = new(int(ordinal.Int64))
	}

	if voidedAt != nil {
		rec.Void = &billing.Void{Reason: voidReason.String, By: voidedBy.String, At: *voidedAt}
	}

	if itemID == nil {
		return &rec, nil, nil
	}

	item := &billing.LineItem{
		ID:            *itemID,
		StudyName:     studyName.String,
		CommissionPct: commissionPct.Decimal,
		Price:         itemAmt.Decimal,
	}

	if studyID != nil {
		item.StudyID = *studyID
	}

	return &rec, item, nil
}

// GetRecordWith loads one record, voided or not.
func GetRecordWith(ctx context.Context, q DBTX, id uuid.UUID) (*billing.Record, error) {
	recs, err := queryRecords(ctx, q, []string{"r.id = $1"}, id)
	if err != nil {
		return nil, err
	}

	if len(recs) == 0 {
		return nil, apperr.ErrNotFound
	}

	return recs[0], nil
}

// InsertRecord writes a record and its line items, filling ID and timestamps.
func InsertRecord(ctx context.Context, q DBTX, rec *billing.Record) error {
	query := `
		INSERT INTO billing_records (
			day, ordinal, patient_name, doctor_id, no_doctor_info, is_mobile, payment_method, charge_tier,
			imaging_plate, imaging_plate_fee, report_included, report_fee, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		rec.Date,
		rec.Ordinal,
		rec.PatientName,
		rec.DoctorID,
		rec.NoDoctorInfo,
		rec.IsMobileService,
		rec.PaymentMethod,
		rec.ChargeTier,
		rec.Extras.ImagingPlate,
		rec.Extras.ImagingPlateFee,
		rec.Extras.Report,
		rec.Extras.ReportFee,
		rec.CreatedBy,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating record: %w", err)
	}

	itemQuery := `
		INSERT INTO line_items (record_id, position, study_id, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range rec.LineItems {
		li := &rec.LineItems[i]
		if err := q.QueryRowContext(ctx, itemQuery, rec.ID, i+1, li.StudyID, li.Price).Scan(&li.ID); err != nil {
			return fmt.Errorf("creating line item: %w", err)
		}
	}

	return nil
}

func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*billing.Record, error) {
	rec, err := GetRecordWith(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("getting record: %w", err)
	}

	return rec, nil
}

func (s *Store) ListRecords(ctx context.Context, filter billing.ListFilter) ([]*billing.Record, error) {
	return QueryRecords(ctx, s.db, filter)
}

// lockActive takes a row lock on the record and fails if it is voided or missing.
func lockActive(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var voided bool

	err := tx.QueryRowContext(ctx,
		`SELECT voided_at IS NOT NULL FROM billing_records WHERE id = $1 FOR UPDATE`, id,
	).Scan(&voided)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}

		return fmt.Errorf("locking record: %w", err)
	}

	if voided {
		return apperr.ErrAlreadyVoided
	}

	return nil
}

func touch(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `UPDATE billing_records SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touching record: %w", err)
	}

	return nil
}

func (s *Store) AddLineItem(ctx context.Context, recordID uuid.UUID, item *billing.LineItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockActive(ctx, tx, recordID); err != nil {
		return err
	}

	query := `
		INSERT INTO line_items (record_id, position, study_id, price)
		VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM line_items WHERE record_id = $1), $2, $3)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query, recordID, item.StudyID, item.Price).Scan(&item.ID); err != nil {
		return fmt.Errorf("adding line item: %w", err)
	}

	if err := touch(ctx, tx, recordID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) RemoveLineItem(ctx context.Context, recordID, itemID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockActive(ctx, tx, recordID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM line_items WHERE id = $1 AND record_id = $2`, itemID, recordID)
	if err != nil {
		return fmt.Errorf("removing line item: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}

	if err := touch(ctx, tx, recordID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method billing.PaymentMethod) error {
	query := `
		UPDATE billing_records
		SET payment_method = $1, updated_at = NOW()
		WHERE id = $2 AND voided_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, method, id)
	if err != nil {
		return fmt.Errorf("updating payment method: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrAlreadyVoided
	}

	return nil
}
