package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/frontdesk/internal/http/auth"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/catalog"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/commission"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/expense"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/reconciliation"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/record"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/sequence"
)

type Options struct {
	AllowedOrigins []string
	AuthSecret     string
	Timeout        time.Duration
}

type Handlers struct {
	Records        *record.Handler
	Sequence       *sequence.Handler
	Expenses       *expense.Handler
	Reconciliation *reconciliation.Handler
	Commissions    *commission.Handler
	Catalog        *catalog.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.HeaderActorID, auth.HeaderActorRole},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.AuthSecret))

		r.Route("/records", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Records.Routes(r)
		})

		r.Route("/sequence", h.Sequence.Routes)

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Expenses.Routes(r)
		})

		r.Route("/reconciliation", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Reconciliation.Routes(r)
		})

		r.Route("/commissions", h.Commissions.Routes)
		r.Route("/studies", h.Catalog.StudyRoutes)
		r.Route("/doctors", h.Catalog.DoctorRoutes)
	})

	return router
}
