package sequence

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
)

type Handler struct {
	seq   *sequence.Manager
	dates api.Dates
}

func NewHandler(seq *sequence.Manager, dates api.Dates) *Handler {
	return &Handler{seq: seq, dates: dates}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{date}/next", h.next)
	r.Get("/{date}/verify", h.verify)
	r.Post("/{date}/renumber", h.renumber)
}

type nextResponse struct {
	Date string `json:"date"`
	Next int    `json:"next"`
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	date, err := h.dates.Param(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	n, err := h.seq.AssignNext(r.Context(), date)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, nextResponse{Date: date.Format(time.DateOnly), Next: n})
}

type verifyResponse struct {
	Date       string `json:"date"`
	Consistent bool   `json:"consistent"`
}

// verify answers 200 for a dense day; a broken one surfaces as 409 with the
// detail of the first violation.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	date, err := h.dates.Param(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	if err := h.seq.Verify(r.Context(), date); err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, verifyResponse{Date: date.Format(time.DateOnly), Consistent: true})
}

type renumberResponse struct {
	Date    string `json:"date"`
	Changed int    `json:"changed"`
}

func (h *Handler) renumber(w http.ResponseWriter, r *http.Request) {
	date, err := h.dates.Param(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	changed, err := h.seq.RenumberAll(r.Context(), date, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, renumberResponse{Date: date.Format(time.DateOnly), Changed: changed})
}
