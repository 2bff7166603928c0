package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
)

type itemResponse struct {
	ID            uuid.UUID       `json:"id"`
	StudyID       uuid.UUID       `json:"study_id"`
	StudyName     string          `json:"study_name"`
	CommissionPct decimal.Decimal `json:"commission_pct"`
	Price         decimal.Decimal `json:"price"`
}

type voidInfo struct {
	Reason string    `json:"reason"`
	By     string    `json:"by"`
	At     time.Time `json:"at"`
}

type extrasResponse struct {
	ImagingPlate    bool            `json:"imaging_plate"`
	ImagingPlateFee decimal.Decimal `json:"imaging_plate_fee"`
	Report          bool            `json:"report"`
	ReportFee       decimal.Decimal `json:"report_fee"`
}

type recordResponse struct {
	ID              uuid.UUID             `json:"id"`
	Date            string                `json:"date"`
	Ordinal         *int                  `json:"ordinal"`
	PatientName     string                `json:"patient_name"`
	DoctorID        *uuid.UUID            `json:"doctor_id,omitempty"`
	DoctorName      string                `json:"doctor_name,omitempty"`
	NoDoctorInfo    bool                  `json:"no_doctor_info"`
	IsMobileService bool                  `json:"is_mobile_service"`
	PaymentMethod   billing.PaymentMethod `json:"payment_method"`
	ChargeTier      billing.ChargeTier    `json:"charge_tier"`
	Items           []itemResponse        `json:"items"`
	Extras          *extrasResponse       `json:"extras,omitempty"`
	Total           decimal.Decimal       `json:"total"`
	Void            *voidInfo             `json:"void,omitempty"`
	CreatedBy       string                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       *time.Time            `json:"updated_at,omitempty"`
}

func toItemResponse(li billing.LineItem) itemResponse {
	return itemResponse{
		ID:            li.ID,
		StudyID:       li.StudyID,
		StudyName:     li.StudyName,
		CommissionPct: li.CommissionPct,
		Price:         li.Price,
	}
}

func toResponse(rec *billing.Record) recordResponse {
	resp := recordResponse{
		ID:              rec.ID,
		Date:            rec.Date.Format(time.DateOnly),
		Ordinal:         rec.Ordinal,
		PatientName:     rec.PatientName,
		DoctorID:        rec.DoctorID,
		DoctorName:      rec.DoctorName,
		NoDoctorInfo:    rec.NoDoctorInfo,
		IsMobileService: rec.IsMobileService,
		PaymentMethod:   rec.PaymentMethod,
		ChargeTier:      rec.ChargeTier,
		Items:           make([]itemResponse, 0, len(rec.LineItems)),
		Total:           rec.Total(),
		CreatedBy:       rec.CreatedBy,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}

	for _, li := range rec.LineItems {
		resp.Items = append(resp.Items, toItemResponse(li))
	}

	if rec.IsMobileService {
		resp.Extras = &extrasResponse{
			ImagingPlate:    rec.Extras.ImagingPlate,
			ImagingPlateFee: rec.Extras.ImagingPlateFee,
			Report:          rec.Extras.Report,
			ReportFee:       rec.Extras.ReportFee,
		}
	}

	if rec.Void != nil {
		resp.Void = &voidInfo{Reason: rec.Void.Reason, By: rec.Void.By, At: rec.Void.At}
	}

	return resp
}

func toResponseList(recs []*billing.Record) []recordResponse {
	resp := make([]recordResponse, len(recs))
	for i, rec := range recs {
		resp[i] = toResponse(rec)
	}

	return resp
}
