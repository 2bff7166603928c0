package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/catalog"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
)

const maxUpload = 10 << 20

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) StudyRoutes(r chi.Router) {
	r.Get("/", h.listStudies)
	r.Post("/", h.saveStudy)
	r.Post("/import", h.importStudies)
}

func (h *Handler) DoctorRoutes(r chi.Router) {
	r.Get("/", h.listDoctors)
	r.Post("/", h.createDoctor)
}

type studyResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	PriceNormal   decimal.Decimal `json:"price_normal"`
	PriceSocial   decimal.Decimal `json:"price_social"`
	PriceSpecial  decimal.Decimal `json:"price_special"`
	CommissionPct decimal.Decimal `json:"commission_pct"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

func toStudyResponse(s *catalog.Study) studyResponse {
	return studyResponse{
		ID:            s.ID,
		Code:          s.Code,
		Name:          s.Name,
		Category:      s.Category,
		PriceNormal:   s.PriceNormal,
		PriceSocial:   s.PriceSocial,
		PriceSpecial:  s.PriceSpecial,
		CommissionPct: s.CommissionPct,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (h *Handler) listStudies(w http.ResponseWriter, r *http.Request) {
	studies, err := h.svc.ListStudies(r.Context(), api.Flag(r, "include_inactive"))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	resp := make([]studyResponse, len(studies))
	for i, s := range studies {
		resp[i] = toStudyResponse(s)
	}

	api.JSON(w, http.StatusOK, resp)
}

type studyRequest struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	PriceNormal   decimal.Decimal  `json:"price_normal"`
	PriceSocial   *decimal.Decimal `json:"price_social,omitempty"`
	PriceSpecial  *decimal.Decimal `json:"price_special,omitempty"`
	CommissionPct decimal.Decimal  `json:"commission_pct"`
	Active        *bool            `json:"active,omitempty"`
}

func (h *Handler) saveStudy(w http.ResponseWriter, r *http.Request) {
	var req studyRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	study, err := h.svc.SaveStudy(r.Context(), catalog.StudyParams{
		Code:          req.Code,
		Name:          req.Name,
		Category:      req.Category,
		PriceNormal:   req.PriceNormal,
		PriceSocial:   req.PriceSocial,
		PriceSpecial:  req.PriceSpecial,
		CommissionPct: req.CommissionPct,
		Active:        req.Active,
	}, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toStudyResponse(study))
}

type rowErrorResponse struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type importResponse struct {
	Charset  string             `json:"charset"`
	Imported int                `json:"imported"`
	Skipped  []rowErrorResponse `json:"skipped"`
}

func (h *Handler) importStudies(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		api.Error(w, r, apperr.Invalid("file", "failed to parse form: "+err.Error()))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		api.Error(w, r, apperr.Invalid("file", "is required"))
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), file, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	resp := importResponse{
		Charset:  result.Charset,
		Imported: result.Imported,
		Skipped:  make([]rowErrorResponse, len(result.Skipped)),
	}

	for i, re := range result.Skipped {
		resp.Skipped[i] = rowErrorResponse{Row: re.Row, Reason: re.Reason}
	}

	api.JSON(w, http.StatusOK, resp)
}

type doctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.svc.ListDoctors(r.Context())
	if err != nil {
		api.Error(w, r, err)
		return
	}

	resp := make([]doctorResponse, len(doctors))
	for i, d := range doctors {
		resp[i] = doctorResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
	}

	api.JSON(w, http.StatusOK, resp)
}

type createDoctorRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createDoctor(w http.ResponseWriter, r *http.Request) {
	var req createDoctorRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	d, err := h.svc.CreateDoctor(r.Context(), req.Name, api.Actor(r))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, doctorResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt})
}
