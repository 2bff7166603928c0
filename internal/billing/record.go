package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the patient settled the visit.
type PaymentMethod string

const (
	MethodCash             PaymentMethod = "cash"
	MethodCard             PaymentMethod = "card"
	MethodBankTransfer     PaymentMethod = "bank_transfer"
	MethodInvoicedCash     PaymentMethod = "invoiced_cash"
	MethodAccountStatement PaymentMethod = "account_statement"
)

// PaymentMethods lists every method in report order.
var PaymentMethods = []PaymentMethod{
	MethodCash, MethodCard, MethodBankTransfer, MethodInvoicedCash, MethodAccountStatement,
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodInvoicedCash, MethodAccountStatement:
		return true
	}

	return false
}

// ChargeTier selects the study price column.
type ChargeTier string

const (
	TierNormal  ChargeTier = "normal"
	TierSocial  ChargeTier = "social"
	TierSpecial ChargeTier = "special"
	TierCustom  ChargeTier = "custom"
)

func (t ChargeTier) IsValid() bool {
	switch t {
	case TierNormal, TierSocial, TierSpecial, TierCustom:
		return true
	}

	return false
}

// Void is the audit stamp of an annulled record.
type Void struct {
	Reason string
	By     string
	At     time.Time
}

// MobileExtras are flat fees billed on mobile-service visits only.
type MobileExtras struct {
	ImagingPlate    bool
	ImagingPlateFee decimal.Decimal
	Report          bool
	ReportFee       decimal.Decimal
}

// LineItem is one study performed during the visit.
type LineItem struct {
	ID            uuid.UUID
	StudyID       uuid.UUID
	StudyName     string          // Loaded via JOIN
	CommissionPct decimal.Decimal // Loaded via JOIN
	Price         decimal.Decimal
}

// Record is one patient visit.
type Record struct {
	ID              uuid.UUID
	Date            time.Time
	Ordinal         *int
	PatientName     string
	DoctorID        *uuid.UUID
	DoctorName      string // Loaded via JOIN
	NoDoctorInfo    bool
	IsMobileService bool
	PaymentMethod   PaymentMethod
	ChargeTier      ChargeTier
	LineItems       []LineItem
	Extras          MobileExtras
	Void            *Void
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

func (r *Record) IsVoided() bool { return r.Void != nil }

// Numbered reports whether the record takes part in the day's ordinal sequence.
func (r *Record) Numbered() bool {
	return !r.IsVoided() && !r.IsMobileService
}

// Total is the amount charged for the visit.
func (r *Record) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range r.LineItems {
		total = total.Add(li.Price)
	}

	if !r.IsMobileService {
		return total
	}

	if r.Extras.ImagingPlate {
		total = total.Add(r.Extras.ImagingPlateFee)
	}

	if r.Extras.Report {
		total = total.Add(r.Extras.ReportFee)
	}

	return total
}
