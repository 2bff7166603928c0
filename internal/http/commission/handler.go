package commission

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/commission"
	"github.com/MrJamesThe3rd/frontdesk/internal/export"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
)

type Handler struct {
	svc   *commission.Service
	dates api.Dates
}

func NewHandler(svc *commission.Service, dates api.Dates) *Handler {
	return &Handler{svc: svc, dates: dates}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
	r.Get("/export", h.export)
}

type studyResponse struct {
	Study      string          `json:"study"`
	Patients   int             `json:"patients"`
	Base       decimal.Decimal `json:"base"`
	Commission decimal.Decimal `json:"commission"`
}

type doctorResponse struct {
	DoctorID   uuid.UUID       `json:"doctor_id"`
	DoctorName string          `json:"doctor_name"`
	Patients   int             `json:"patients"`
	Base       decimal.Decimal `json:"base"`
	Commission decimal.Decimal `json:"commission"`
	Studies    []studyResponse `json:"studies"`
}

type summaryResponse struct {
	From    string           `json:"from"`
	To      string           `json:"to"`
	Doctors []doctorResponse `json:"doctors"`
}

// period reads from and to; either one missing defaults to today.
func (h *Handler) period(r *http.Request) (time.Time, time.Time, error) {
	from, err := h.dates.Query(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	to, err := h.dates.Query(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return from, to, nil
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.period(r)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	totals, err := h.svc.Summary(r.Context(), from, to)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	resp := summaryResponse{
		From:    from.Format(time.DateOnly),
		To:      to.Format(time.DateOnly),
		Doctors: make([]doctorResponse, len(totals)),
	}

	for i, dt := range totals {
		d := doctorResponse{
			DoctorID:   dt.DoctorID,
			DoctorName: dt.DoctorName,
			Patients:   dt.Patients,
			Base:       dt.Base,
			Commission: dt.Commission,
			Studies:    make([]studyResponse, len(dt.Studies)),
		}

		for j, st := range dt.Studies {
			d.Studies[j] = studyResponse{Study: st.Study, Patients: st.Patients, Base: st.Base, Commission: st.Commission}
		}

		resp.Doctors[i] = d
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.period(r)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	totals, err := h.svc.Summary(r.Context(), from, to)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCommissions(&buf, from, to, totals); err != nil {
		api.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("comisiones_%s_%s.xlsx", from.Format(time.DateOnly), to.Format(time.DateOnly))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if _, err := buf.WriteTo(w); err != nil {
		api.Error(w, r, err)
	}
}
