package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	billingStore "github.com/MrJamesThe3rd/frontdesk/internal/billing/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/frontdesk/internal/catalog/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/commission"
	"github.com/MrJamesThe3rd/frontdesk/internal/config"
	"github.com/MrJamesThe3rd/frontdesk/internal/database"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
	expenseStore "github.com/MrJamesThe3rd/frontdesk/internal/expense/store"
	frontdeskHttp "github.com/MrJamesThe3rd/frontdesk/internal/http"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
	catalogHandler "github.com/MrJamesThe3rd/frontdesk/internal/http/catalog"
	commissionHandler "github.com/MrJamesThe3rd/frontdesk/internal/http/commission"
	expenseHandler "github.com/MrJamesThe3rd/frontdesk/internal/http/expense"
	reconciliationHandler "github.com/MrJamesThe3rd/frontdesk/internal/http/reconciliation"
	recordHandler "github.com/MrJamesThe3rd/frontdesk/internal/http/record"
	sequenceHandler "github.com/MrJamesThe3rd/frontdesk/internal/http/sequence"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
	reconciliationStore "github.com/MrJamesThe3rd/frontdesk/internal/reconciliation/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
	sequenceStore "github.com/MrJamesThe3rd/frontdesk/internal/sequence/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load clinic timezone", "error", err)
		os.Exit(1)
	}

	tolerance, err := decimal.NewFromString(cfg.Reconciliation.Tolerance)
	if err != nil {
		slog.Error("invalid reconciliation tolerance", "value", cfg.Reconciliation.Tolerance, "error", err)
		os.Exit(1)
	}

	attribution, err := commission.ParseAttribution(cfg.Commission.Attribution)
	if err != nil {
		slog.Error("invalid commission attribution", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.ConnectionString(),
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnectTimeout:  cfg.DB.ConnectTimeout,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	clock := time.Now
	dates := api.Dates{Loc: loc, Clock: clock}

	var (
		records = billingStore.New(db)

		catalogService        = catalog.NewService(catalogStore.New(db))
		sequenceManager       = sequence.NewManager(sequenceStore.New(db), clock)
		billingService        = billing.NewService(records, sequenceManager, catalogService)
		expenseService        = expense.NewService(expenseStore.New(db))
		reconciliationService = reconciliation.NewService(reconciliationStore.New(db), tolerance)
		commissionService     = commission.NewService(records, attribution)
	)

	router := frontdeskHttp.New(
		frontdeskHttp.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AuthSecret:     cfg.Auth.Secret,
			Timeout:        cfg.Server.Timeout,
		},
		frontdeskHttp.Handlers{
			Records:        recordHandler.NewHandler(billingService, sequenceManager, dates),
			Sequence:       sequenceHandler.NewHandler(sequenceManager, dates),
			Expenses:       expenseHandler.NewHandler(expenseService, dates),
			Reconciliation: reconciliationHandler.NewHandler(reconciliationService, dates),
			Commissions:    commissionHandler.NewHandler(commissionService, dates),
			Catalog:        catalogHandler.NewHandler(catalogService),
		},
	)

	if cfg.Auth.Secret == "" {
		slog.Warn("AUTH_SECRET is empty; trusting actor headers")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "timezone", loc.String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
