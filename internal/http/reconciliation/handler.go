package reconciliation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/frontdesk/internal/export"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
)

type Handler struct {
	svc   *reconciliation.Service
	dates api.Dates
}

func NewHandler(svc *reconciliation.Service, dates api.Dates) *Handler {
	return &Handler{svc: svc, dates: dates}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{date}", h.snapshot)
	r.Get("/{date}/expected", h.expected)
	r.Post("/{date}/preview", h.preview)
	r.Post("/{date}/close", h.close)
	r.Post("/{date}/export", h.export)
}

// amount takes the counted value either as a JSON number or as the string
// the operator typed; parsing and validation happen in the service.
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}

	*a = amount(n.String())

	return nil
}

type countedRequest struct {
	Cash    amount `json:"cash"`
	Card    amount `json:"card"`
	Deposit amount `json:"deposit"`
}

func (c countedRequest) input() reconciliation.CountedInput {
	return reconciliation.CountedInput{Cash: string(c.Cash), Card: string(c.Card), Deposit: string(c.Deposit)}
}

func (h *Handler) counted(w http.ResponseWriter, r *http.Request) (time.Time, reconciliation.CountedInput, bool) {
	date, err := h.dates.Param(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return time.Time{}, reconciliation.CountedInput{}, false
	}

	var req countedRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return time.Time{}, reconciliation.CountedInput{}, false
	}

	return date, req.input(), true
}

func (h *Handler) expected(w http.ResponseWriter, r *http.Request) {
	date, err := h.dates.Param(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	exp, err := h.svc.Expected(r.Context(), date)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toExpectedResponse(exp))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	date, in, ok := h.counted(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Preview(r.Context(), date, in)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toResultResponse(res))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	date, in, ok := h.counted(w, r)
	if !ok {
		return
	}

	snap, err := h.svc.Close(r.Context(), date, in, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, toSnapshotResponse(snap))
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	date, err := h.dates.Param(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	snap, err := h.svc.Snapshot(r.Context(), date)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	date, in, ok := h.counted(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Report(r.Context(), date, in)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	// Render into memory first so a failed workbook still gets a JSON error.
	var buf bytes.Buffer
	if err := export.WriteReconciliation(&buf, *report); err != nil {
		api.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("cierre_%s.xlsx", date.Format(time.DateOnly))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if _, err := buf.WriteTo(w); err != nil {
		api.Error(w, r, err)
	}
}
