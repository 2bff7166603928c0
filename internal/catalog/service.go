package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog

type Repository interface {
	ListStudies(ctx context.Context, includeInactive bool) ([]*Study, error)
	GetStudy(ctx context.Context, id uuid.UUID) (*Study, error)
	UpsertStudies(ctx context.Context, studies []*Study) (int, error)
	ListDoctors(ctx context.Context) ([]*Doctor, error)
	CreateDoctor(ctx context.Context, d *Doctor) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type StudyParams struct {
	Code          string
	Name          string
	Category      string
	PriceNormal   decimal.Decimal
	PriceSocial   *decimal.Decimal
	PriceSpecial  *decimal.Decimal
	CommissionPct decimal.Decimal
	Active        *bool
}

func (p StudyParams) study() (*Study, error) {
	if err := apperr.Required("code", p.Code); err != nil {
		return nil, err
	}

	if err := apperr.Required("name", p.Name); err != nil {
		return nil, err
	}

	s := &Study{
		Code:          strings.ToUpper(strings.TrimSpace(p.Code)),
		Name:          strings.TrimSpace(p.Name),
		Category:      strings.TrimSpace(p.Category),
		PriceNormal:   p.PriceNormal,
		PriceSocial:   p.PriceNormal,
		PriceSpecial:  p.PriceNormal,
		CommissionPct: p.CommissionPct,
		Active:        true,
	}

	if p.PriceSocial != nil {
		s.PriceSocial = *p.PriceSocial
	}

	if p.PriceSpecial != nil {
		s.PriceSpecial = *p.PriceSpecial
	}

	if p.Active != nil {
		s.Active = *p.Active
	}

	for field, d := range map[string]decimal.Decimal{
		"price_normal":  s.PriceNormal,
		"price_social":  s.PriceSocial,
		"price_special": s.PriceSpecial,
	} {
		if d.IsNegative() {
			return nil, apperr.Invalid(field, "cannot be negative")
		}
	}

	if s.CommissionPct.IsNegative() || s.CommissionPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperr.Invalid("commission_pct", "must be between 0 and 100")
	}

	return s, nil
}

func (s *Service) ListStudies(ctx context.Context, includeInactive bool) ([]*Study, error) {
	studies, err := s.repo.ListStudies(ctx, includeInactive)
	if err != nil {
		return nil, apperr.Store("listing studies", err)
	}

	return studies, nil
}

// SaveStudy creates a study or replaces the one with the same code.
func (s *Service) SaveStudy(ctx context.Context, params StudyParams, by actor.Actor) (*Study, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}

	if !by.IsAdmin() {
		return nil, apperr.ErrForbidden
	}

	study, err := params.study()
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpsertStudies(ctx, []*Study{study}); err != nil {
		return nil, apperr.Store("saving study", err)
	}

	return study, nil
}

// Import loads a price list CSV. Studies are upserted by code, so uploading
// the same list twice leaves the catalog unchanged.
func (s *Service) Import(ctx context.Context, r io.Reader, by actor.Actor) (*ImportResult, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}

	if !by.IsAdmin() {
		return nil, apperr.ErrForbidden
	}

	parsed, err := ParseCSV(r)
	if err != nil {
		return nil, apperr.Invalid("file", err.Error())
	}

	result := &ImportResult{Charset: parsed.Charset, Skipped: parsed.Skipped}

	if len(parsed.Studies) > 0 {
		n, err := s.repo.UpsertStudies(ctx, parsed.Studies)
		if err != nil {
			return nil, apperr.Store("importing studies", err)
		}

		result.Imported = n
	}

	slog.Info("catalog imported",
		"imported", result.Imported,
		"skipped", len(result.Skipped),
		"charset", result.Charset,
		"actor", by.ID,
	)

	return result, nil
}

// Quote prices a study for a charge tier. Unknown and retired studies are a
// validation failure of the line item, not a missing resource.
func (s *Service) Quote(ctx context.Context, studyID uuid.UUID, tier billing.ChargeTier) (billing.Quote, error) {
	study, err := s.repo.GetStudy(ctx, studyID)
	if errors.Is(err, apperr.ErrNotFound) {
		return billing.Quote{}, apperr.Invalid("study_id", fmt.Sprintf("unknown study %s", studyID))
	}

	if err != nil {
		return billing.Quote{}, fmt.Errorf("getting study: %w", err)
	}

	if !study.Active {
		return billing.Quote{}, apperr.Invalid("study_id", fmt.Sprintf("study %s is no longer offered", study.Code))
	}

	return billing.Quote{
		StudyName:     study.Name,
		CommissionPct: study.CommissionPct,
		Price:         study.PriceFor(tier),
	}, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, apperr.Store("listing doctors", err)
	}

	return doctors, nil
}

func (s *Service) CreateDoctor(ctx context.Context, name string, by actor.Actor) (*Doctor, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}

	if err := apperr.Required("name", name); err != nil {
		return nil, err
	}

	d := &Doctor{Name: strings.TrimSpace(name)}
	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		return nil, apperr.Store("creating doctor", err)
	}

	return d, nil
}
