package reconciliation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
	"github.com/MrJamesThe3rd/frontdesk/internal/export"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/auth"
	rechttp "github.com/MrJamesThe3rd/frontdesk/internal/http/reconciliation"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
)

var (
	now = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
)

func newServer(t *testing.T) (http.Handler, *reconciliation.MockRepository) {
	t.Helper()

	repo := reconciliation.NewMockRepository(gomock.NewController(t))
	svc := reconciliation.NewService(repo, reconciliation.DefaultTolerance)
	h := rechttp.NewHandler(svc, api.Dates{Loc: time.UTC, Clock: func() time.Time { return now }})

	router := chi.NewRouter()
	router.Use(auth.Middleware(""))
	router.Route("/reconciliation", h.Routes)

	return router, repo
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderActorID, "contabilidad")
	req.Header.Set(auth.HeaderActorRole, "accounting")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func ledger() *reconciliation.Ledger {
	item := func(p string) []billing.LineItem {
		return []billing.LineItem{{Price: decimal.RequireFromString(p)}}
	}

	return &reconciliation.Ledger{
		Records: []*billing.Record{
			{Date: day, PaymentMethod: billing.MethodCash, LineItems: item("300")},
			{Date: day, PaymentMethod: billing.MethodCard, LineItems: item("150")},
			{Date: day, PaymentMethod: billing.MethodBankTransfer, LineItems: item("200")},
		},
		Expenses: []*expense.Expense{
			{Date: day, Amount: decimal.NewFromInt(50), Concept: "agua", Method: expense.MethodCash, CreatedAt: now},
		},
	}
}

func TestHandler_Preview(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setupMock    func(m *reconciliation.MockRepository)
		wantStatus   int
		wantBalanced bool
	}{
		{
			name: "NumbersBalance",
			body: `{"cash":250,"card":150.00,"deposit":200}`,
			setupMock: func(m *reconciliation.MockRepository) {
				m.EXPECT().LoadDay(gomock.Any(), day).Return(ledger(), nil)
			},
			wantStatus:   http.StatusOK,
			wantBalanced: true,
		},
		{
			name: "StringsShortCash",
			body: `{"cash":"240","card":"150","deposit":"1,000"}`,
			setupMock: func(m *reconciliation.MockRepository) {
				m.EXPECT().LoadDay(gomock.Any(), day).Return(ledger(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "MissingChannel",
			body:       `{"cash":"240","card":"150"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "DecimalComma",
			body:       `{"cash":"250,00","card":"150","deposit":"200"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NotANumber",
			body:       `{"cash":true,"card":"150","deposit":"1"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, repo := newServer(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := do(srv, http.MethodPost, "/reconciliation/today/preview", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				return
			}

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantBalanced, got["is_balanced"])
			assert.Equal(t, "250", got["expected"].(map[string]any)["cash"])
		})
	}
}

func TestHandler_Close(t *testing.T) {
	t.Run("Closed", func(t *testing.T) {
		srv, repo := newServer(t)
		repo.EXPECT().LoadDay(gomock.Any(), day).Return(ledger(), nil)
		repo.EXPECT().SaveSnapshot(gomock.Any(), gomock.Any()).Return(nil)

		rec := do(srv, http.MethodPost, "/reconciliation/2026-03-10/close", `{"cash":250,"card":150,"deposit":200}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "contabilidad", got["closed_by"])
		assert.Equal(t, true, got["is_balanced"])
	})

	t.Run("AlreadyClosed", func(t *testing.T) {
		srv, repo := newServer(t)
		repo.EXPECT().LoadDay(gomock.Any(), day).Return(ledger(), nil)
		repo.EXPECT().SaveSnapshot(gomock.Any(), gomock.Any()).Return(apperr.ErrAlreadyClosed)

		rec := do(srv, http.MethodPost, "/reconciliation/2026-03-10/close", `{"cash":250,"card":150,"deposit":200}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandler_Snapshot(t *testing.T) {
	srv, repo := newServer(t)
	repo.EXPECT().GetSnapshot(gomock.Any(), day).Return(nil, apperr.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/reconciliation/2026-03-10", "").Code)
}

func TestHandler_Expected(t *testing.T) {
	srv, repo := newServer(t)
	repo.EXPECT().LoadDay(gomock.Any(), day).Return(ledger(), nil)

	rec := do(srv, http.MethodGet, "/reconciliation/today/expected", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "650", got["total_revenue"])
	assert.Equal(t, "50", got["cash_expenses"])
	assert.Equal(t, "200", got["expected"].(map[string]any)["deposit"])
}

func TestHandler_Export(t *testing.T) {
	srv, repo := newServer(t)
	repo.EXPECT().LoadDay(gomock.Any(), day).Return(ledger(), nil)

	rec := do(srv, http.MethodPost, "/reconciliation/2026-03-10/export", `{"cash":"240","card":"150","deposit":"200"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cierre_2026-03-10.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	verdict, err := f.GetCellValue(export.SheetClose, "B8")
	require.NoError(t, err)
	assert.Equal(t, "Descuadre", verdict)
}
