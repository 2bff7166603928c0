package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const studyColumns = `id, code, name, category, price_normal, price_social, price_special, commission_pct, active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanStudy(row scanner) (*catalog.Study, error) {
	var s catalog.Study

	err := row.Scan(
		&s.ID, &s.Code, &s.Name, &s.Category,
		&s.PriceNormal, &s.PriceSocial, &s.PriceSpecial, &s.CommissionPct,
		&s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Store) ListStudies(ctx context.Context, includeInactive bool) ([]*catalog.Study, error) {
	query := `SELECT ` + studyColumns + ` FROM studies WHERE active OR $1 ORDER BY category ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("listing studies: %w", err)
	}
	defer rows.Close()

	var studies []*catalog.Study

	for rows.Next() {
		study, err := scanStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning study: %w", err)
		}

		studies = append(studies, study)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating studies: %w", err)
	}

	return studies, nil
}

func (s *Store) GetStudy(ctx context.Context, id uuid.UUID) (*catalog.Study, error) {
	query := `SELECT ` + studyColumns + ` FROM studies WHERE id = $1`

	study, err := scanStudy(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting study: %w", err)
	}

	return study, nil
}

// UpsertStudies inserts or updates studies by code in a single transaction.
// Ids and creation times are filled in on the given studies.
func (s *Store) UpsertStudies(ctx context.Context, studies []*catalog.Study) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO studies (code, name, category, price_normal, price_social, price_special, commission_pct, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price_normal = EXCLUDED.price_normal,
			price_social = EXCLUDED.price_social,
			price_special = EXCLUDED.price_special,
			commission_pct = EXCLUDED.commission_pct,
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	for _, st := range studies {
		err := tx.QueryRowContext(ctx, query,
			st.Code, st.Name, st.Category,
			st.PriceNormal, st.PriceSocial, st.PriceSpecial, st.CommissionPct, st.Active,
		).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("upserting study %s: %w", st.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing studies: %w", err)
	}

	return len(studies), nil
}

func (s *Store) ListDoctors(ctx context.Context) ([]*catalog.Doctor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM doctors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*catalog.Doctor

	for rows.Next() {
		var d catalog.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning doctor: %w", err)
		}

		doctors = append(doctors, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating doctors: %w", err)
	}

	return doctors, nil
}

func (s *Store) CreateDoctor(ctx context.Context, d *catalog.Doctor) error {
	query := `INSERT INTO doctors (name, created_at) VALUES ($1, NOW()) RETURNING id, created_at`

	if err := s.db.QueryRowContext(ctx, query, d.Name).Scan(&d.ID, &d.CreatedAt); err != nil {
		return fmt.Errorf("creating doctor: %w", err)
	}

	return nil
}
