package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=billing
type Repository interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*Record, error)
	ListRecords(ctx context.Context, filter ListFilter) ([]*Record, error)

	AddLineItem(ctx context.Context, recordID uuid.UUID, item *LineItem) error
	RemoveLineItem(ctx context.Context, recordID, itemID uuid.UUID) error
	UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method PaymentMethod) error
}

// Numberer inserts a new record, assigning its ordinal under the day lock.
type Numberer interface {
	Register(ctx context.Context, rec *Record, by actor.Actor) error
}

// PriceBook resolves what a study costs for a charge tier.
type PriceBook interface {
	Quote(ctx context.Context, studyID uuid.UUID, tier ChargeTier) (Quote, error)
}

type Quote struct {
	StudyName     string
	CommissionPct decimal.Decimal
	Price         decimal.Decimal
}

type ListFilter struct {
	Date          *time.Time
	From          *time.Time
	To            *time.Time
	IncludeVoided bool
}

type ItemParams struct {
	StudyID uuid.UUID
	// Price is required for the custom tier and ignored otherwise.
	Price *decimal.Decimal
}

type CreateParams struct {
	Date            time.Time
	PatientName     string
	DoctorID        *uuid.UUID
	NoDoctorInfo    bool
	IsMobileService bool
	PaymentMethod   PaymentMethod
	ChargeTier      ChargeTier
	Items           []ItemParams
	Extras          MobileExtras
}

type Service struct {
	repo     Repository
	numberer Numberer
	prices   PriceBook
}

func NewService(repo Repository, numberer Numberer, prices PriceBook) *Service {
	return &Service{repo: repo, numberer: numberer, prices: prices}
}

func (p CreateParams) validate() error {
	if p.Date.IsZero() {
		return apperr.Invalid("date", "is required")
	}

	if err := apperr.Required("patient_name", p.PatientName); err != nil {
		return err
	}

	if !p.PaymentMethod.IsValid() {
		return apperr.Invalid("payment_method", "unknown method "+string(p.PaymentMethod))
	}

	if !p.ChargeTier.IsValid() {
		return apperr.Invalid("charge_tier", "unknown tier "+string(p.ChargeTier))
	}

	if len(p.Items) == 0 {
		return apperr.Invalid("items", "at least one study is required")
	}

	if p.NoDoctorInfo && p.DoctorID != nil {
		return apperr.Invalid("doctor_id", "cannot be set when no doctor information is flagged")
	}

	if !p.IsMobileService && (p.Extras.ImagingPlate || p.Extras.Report) {
		return apperr.Invalid("extras", "only mobile-service visits carry extras")
	}

	if p.Extras.ImagingPlateFee.IsNegative() || p.Extras.ReportFee.IsNegative() {
		return apperr.Invalid("extras", "fees cannot be negative")
	}

	return nil
}

// Create registers a new visit. Numbered visits receive the next ordinal of their day.
func (s *Service) Create(ctx context.Context, params CreateParams, by actor.Actor) (*Record, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	rec := &Record{
		Date:            calendar.Day(params.Date),
		PatientName:     strings.TrimSpace(params.PatientName),
		DoctorID:        params.DoctorID,
		NoDoctorInfo:    params.NoDoctorInfo,
		IsMobileService: params.IsMobileService,
		PaymentMethod:   params.PaymentMethod,
		ChargeTier:      params.ChargeTier,
		Extras:          params.Extras,
		CreatedBy:       by.ID,
	}

	for _, ip := range params.Items {
		item, err := s.lineItem(ctx, ip, params.ChargeTier)
		if err != nil {
			return nil, err
		}

		rec.LineItems = append(rec.LineItems, item)
	}

	if err := s.numberer.Register(ctx, rec, by); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Service) lineItem(ctx context.Context, ip ItemParams, tier ChargeTier) (LineItem, error) {
	if ip.StudyID == uuid.Nil {
		return LineItem{}, apperr.Invalid("study_id", "is required")
	}

	quote, err := s.prices.Quote(ctx, ip.StudyID, tier)
	if err != nil {
		return LineItem{}, apperr.Store("quoting study", err)
	}

	price := quote.Price

	if tier == TierCustom {
		if ip.Price == nil {
			return LineItem{}, apperr.Invalid("price", "is required for the custom tier")
		}

		price = *ip.Price
	}

	if price.IsNegative() {
		return LineItem{}, apperr.Invalid("price", "cannot be negative")
	}

	return LineItem{
		StudyID:       ip.StudyID,
		StudyName:     quote.StudyName,
		CommissionPct: quote.CommissionPct,
		Price:         price,
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, apperr.Store("getting record", err)
	}

	return rec, nil
}

// ListByDate returns every record of the day, voided ones included, in ordinal/arrival order.
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]*Record, error) {
	day := calendar.Day(date)

	recs, err := s.repo.ListRecords(ctx, ListFilter{Date: &day, IncludeVoided: true})
	if err != nil {
		return nil, apperr.Store("listing records", err)
	}

	return recs, nil
}

func (s *Service) activeRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.IsVoided() {
		return nil, apperr.ErrAlreadyVoided
	}

	return rec, nil
}

func (s *Service) AddLineItem(ctx context.Context, recordID uuid.UUID, params ItemParams) (*LineItem, error) {
	rec, err := s.activeRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	item, err := s.lineItem(ctx, params, rec.ChargeTier)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddLineItem(ctx, recordID, &item); err != nil {
		return nil, apperr.Store("adding line item", err)
	}

	return &item, nil
}

func (s *Service) RemoveLineItem(ctx context.Context, recordID, itemID uuid.UUID) error {
	rec, err := s.activeRecord(ctx, recordID)
	if err != nil {
		return err
	}

	if len(rec.LineItems) == 1 && rec.LineItems[0].ID == itemID {
		return apperr.Invalid("items", "a visit must keep at least one study; void it instead")
	}

	if err := s.repo.RemoveLineItem(ctx, recordID, itemID); err != nil {
		return apperr.Store("removing line item", err)
	}

	return nil
}

// CorrectPaymentMethod fixes the method a visit was settled with.
func (s *Service) CorrectPaymentMethod(ctx context.Context, id uuid.UUID, method PaymentMethod) error {
	if !method.IsValid() {
		return apperr.Invalid("payment_method", "unknown method "+string(method))
	}

	if _, err := s.activeRecord(ctx, id); err != nil {
		return err
	}

	if err := s.repo.UpdatePaymentMethod(ctx, id, method); err != nil {
		return apperr.Store("correcting payment method", err)
	}

	return nil
}
