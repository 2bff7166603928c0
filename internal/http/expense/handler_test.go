package expense_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/auth"
	exphttp "github.com/MrJamesThe3rd/frontdesk/internal/http/expense"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (http.Handler, *expense.MockRepository) {
	t.Helper()

	repo := expense.NewMockRepository(gomock.NewController(t))
	h := exphttp.NewHandler(expense.NewService(repo), api.Dates{Loc: time.UTC, Clock: func() time.Time { return now }})

	router := chi.NewRouter()
	router.Use(auth.Middleware(""))
	router.Route("/expenses", h.Routes)

	return router, repo
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderActorID, "maria")
	req.Header.Set(auth.HeaderActorRole, "reception")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *expense.MockRepository)
		wantStatus int
	}{
		{
			name: "NumericAmount",
			body: `{"date":"today","amount":45.5,"concept":"garrafón","method":"cash"}`,
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *expense.Expense) error {
						assert.True(t, decimal.RequireFromString("45.5").Equal(e.Amount))
						e.ID = uuid.New()
						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "StringAmount",
			body: `{"date":"2026-03-09","amount":"12.00","concept":"papel"}`,
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "NegativeAmount",
			body:       `{"date":"today","amount":-3,"concept":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownMethod",
			body:       `{"date":"today","amount":3,"concept":"x","method":"cheque"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, repo := newServer(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := do(srv, http.MethodPost, "/expenses/", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_List(t *testing.T) {
	srv, repo := newServer(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().ListExpenses(gomock.Any(), day).Return([]*expense.Expense{
		{ID: uuid.New(), Date: day, Amount: decimal.NewFromInt(20), Concept: "agua", Method: expense.MethodCash},
	}, nil)

	rec := do(srv, http.MethodGet, "/expenses/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "20", got[0]["amount"])
	assert.Equal(t, "2026-03-10", got[0]["date"])
}

func TestHandler_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("Deleted", func(t *testing.T) {
		srv, repo := newServer(t)
		repo.EXPECT().DeleteExpense(gomock.Any(), id).Return(nil)

		assert.Equal(t, http.StatusNoContent, do(srv, http.MethodDelete, "/expenses/"+id.String(), "").Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		srv, repo := newServer(t)
		repo.EXPECT().DeleteExpense(gomock.Any(), id).Return(apperr.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, do(srv, http.MethodDelete, "/expenses/"+id.String(), "").Code)
	})
}
