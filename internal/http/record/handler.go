package record

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
)

type Handler struct {
	svc   *billing.Service
	seq   *sequence.Manager
	dates api.Dates
}

func NewHandler(svc *billing.Service, seq *sequence.Manager, dates api.Dates) *Handler {
	return &Handler{svc: svc, seq: seq, dates: dates}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/void", h.void)
	r.Post("/{id}/items", h.addItem)
	r.Delete("/{id}/items/{itemID}", h.removeItem)
	r.Patch("/{id}/payment-method", h.updatePaymentMethod)
}

type itemRequest struct {
	StudyID uuid.UUID        `json:"study_id"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

type extrasRequest struct {
	ImagingPlate    bool            `json:"imaging_plate"`
	ImagingPlateFee decimal.Decimal `json:"imaging_plate_fee"`
	Report          bool            `json:"report"`
	ReportFee       decimal.Decimal `json:"report_fee"`
}

type createRecordRequest struct {
	Date            string                `json:"date"`
	PatientName     string                `json:"patient_name"`
	DoctorID        *uuid.UUID            `json:"doctor_id,omitempty"`
	NoDoctorInfo    bool                  `json:"no_doctor_info"`
	IsMobileService bool                  `json:"is_mobile_service"`
	PaymentMethod   billing.PaymentMethod `json:"payment_method"`
	ChargeTier      billing.ChargeTier    `json:"charge_tier"`
	Items           []itemRequest         `json:"items"`
	Extras          extrasRequest         `json:"extras"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	date, err := h.dates.Body("date", req.Date)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	params := billing.CreateParams{
		Date:            date,
		PatientName:     req.PatientName,
		DoctorID:        req.DoctorID,
		NoDoctorInfo:    req.NoDoctorInfo,
		IsMobileService: req.IsMobileService,
		PaymentMethod:   req.PaymentMethod,
		ChargeTier:      req.ChargeTier,
		Extras: billing.MobileExtras{
			ImagingPlate:    req.Extras.ImagingPlate,
			ImagingPlateFee: req.Extras.ImagingPlateFee,
			Report:          req.Extras.Report,
			ReportFee:       req.Extras.ReportFee,
		},
	}

	for _, it := range req.Items {
		params.Items = append(params.Items, billing.ItemParams{StudyID: it.StudyID, Price: it.Price})
	}

	rec, err := h.svc.Create(r.Context(), params, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, toResponse(rec))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	date, err := h.dates.Query(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	recs, err := h.svc.ListByDate(r.Context(), date)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toResponseList(recs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := api.ID(r, "id")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toResponse(rec))
}

type voidRequest struct {
	Reason string `json:"reason"`
}

type voidResponse struct {
	ID      uuid.UUID `json:"id"`
	Shifted int       `json:"shifted"`
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, err := api.ID(r, "id")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	var req voidRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	shifted, err := h.seq.VoidAndRenumber(r.Context(), id, req.Reason, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, voidResponse{ID: id, Shifted: shifted})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, err := api.ID(r, "id")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	var req itemRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	item, err := h.svc.AddLineItem(r.Context(), id, billing.ItemParams{StudyID: req.StudyID, Price: req.Price})
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, toItemResponse(*item))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := api.ID(r, "id")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	itemID, err := api.ID(r, "itemID")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	if err := h.svc.RemoveLineItem(r.Context(), id, itemID); err != nil {
		api.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type paymentMethodRequest struct {
	PaymentMethod billing.PaymentMethod `json:"payment_method"`
}

func (h *Handler) updatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := api.ID(r, "id")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	var req paymentMethodRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	if err := h.svc.CorrectPaymentMethod(r.Context(), id, req.PaymentMethod); err != nil {
		api.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
