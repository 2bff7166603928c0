package expense

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
)

type Handler struct {
	svc   *expense.Service
	dates api.Dates
}

func NewHandler(svc *expense.Service, dates api.Dates) *Handler {
	return &Handler{svc: svc, dates: dates}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.delete)
}

type expenseResponse struct {
	ID        uuid.UUID       `json:"id"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Concept   string          `json:"concept"`
	Method    expense.Method  `json:"method"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

func toResponse(e *expense.Expense) expenseResponse {
	return expenseResponse{
		ID:        e.ID,
		Date:      e.Date.Format(time.DateOnly),
		Amount:    e.Amount,
		Concept:   e.Concept,
		Method:    e.Method,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	date, err := h.dates.Query(r, "date")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	expenses, err := h.svc.ListByDate(r.Context(), date)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	api.JSON(w, http.StatusOK, resp)
}

// Amount accepts a JSON number or a quoted decimal string.
type createExpenseRequest struct {
	Date    string          `json:"date"`
	Amount  decimal.Decimal `json:"amount"`
	Concept string          `json:"concept"`
	Method  expense.Method  `json:"method"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	date, err := h.dates.Body("date", req.Date)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), expense.CreateParams{
		Date:    date,
		Amount:  req.Amount,
		Concept: req.Concept,
		Method:  req.Method,
	}, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.ID(r, "id")
	if err != nil {
		api.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id, api.Actor(r)); err != nil {
		api.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
