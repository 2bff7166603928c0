package record_test

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

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/auth"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/record"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type mocks struct {
	repo   *billing.MockRepository
	num    *billing.MockNumberer
	prices *billing.MockPriceBook
	seq    *sequence.MockRepository
}

func newServer(t *testing.T) (http.Handler, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:   billing.NewMockRepository(ctrl),
		num:    billing.NewMockNumberer(ctrl),
		prices: billing.NewMockPriceBook(ctrl),
		seq:    sequence.NewMockRepository(ctrl),
	}

	clock := func() time.Time { return now }
	h := record.NewHandler(
		billing.NewService(m.repo, m.num, m.prices),
		sequence.NewManager(m.seq, clock),
		api.Dates{Loc: time.UTC, Clock: clock},
	)

	router := chi.NewRouter()
	router.Use(auth.Middleware(""))
	router.Route("/records", h.Routes)

	return router, m
}

func do(h http.Handler, method, path, body string, as *actor.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if as != nil {
		req.Header.Set(auth.HeaderActorID, as.ID)
		req.Header.Set(auth.HeaderActorRole, string(as.Role))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

var reception = &actor.Actor{ID: "maria", Role: actor.RoleReception}

func TestHandler_Create(t *testing.T) {
	studyID := uuid.New()
	body := `{"date":"today","patient_name":"Ana López","payment_method":"cash","charge_tier":"normal","items":[{"study_id":"` + studyID.String() + `"}]}`

	t.Run("Created", func(t *testing.T) {
		srv, m := newServer(t)

		m.prices.EXPECT().Quote(gomock.Any(), studyID, billing.TierNormal).
			Return(billing.Quote{StudyName: "RX Tórax", CommissionPct: decimal.NewFromInt(10), Price: decimal.NewFromInt(150)}, nil)
		m.num.EXPECT().Register(gomock.Any(), gomock.Any(), *reception).
			DoAndReturn(func(_ context.Context, rec *billing.Record, _ actor.Actor) error {
				rec.ID = uuid.New()
				rec.Ordinal = new(4)
				return nil
			})

		rec := do(srv, http.MethodPost, "/records/", body, reception)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "2026-03-10", got["date"])
		assert.EqualValues(t, 4, got["ordinal"])
		assert.Equal(t, "150", got["total"])
	})

	t.Run("NoActor", func(t *testing.T) {
		srv, _ := newServer(t)

		rec := do(srv, http.MethodPost, "/records/", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("UnknownField", func(t *testing.T) {
		srv, _ := newServer(t)

		rec := do(srv, http.MethodPost, "/records/", `{"patient":"x"}`, reception)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Void(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		body       string
		setupMock  func(m mocks)
		wantStatus int
	}{
		{
			name:       "BlankReason",
			body:       `{"reason":"  "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "NotFound",
			body: `{"reason":"duplicado"}`,
			setupMock: func(m mocks) {
				m.seq.EXPECT().GetRecord(gomock.Any(), id).Return(nil, apperr.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "AlreadyVoided",
			body: `{"reason":"duplicado"}`,
			setupMock: func(m mocks) {
				m.seq.EXPECT().GetRecord(gomock.Any(), id).
					Return(&billing.Record{ID: id, Void: &billing.Void{Reason: "x"}}, nil)
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, m := newServer(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			rec := do(srv, http.MethodPost, "/records/"+id.String()+"/void", tt.body, reception)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_List(t *testing.T) {
	srv, m := newServer(t)

	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	m.repo.EXPECT().ListRecords(gomock.Any(), billing.ListFilter{Date: &day, IncludeVoided: true}).
		Return([]*billing.Record{
			{ID: uuid.New(), Date: day, Ordinal: new(1), PatientName: "Ana"},
			{ID: uuid.New(), Date: day, PatientName: "Luis", Void: &billing.Void{Reason: "duplicado", By: "maria"}},
		}, nil)

	rec := do(srv, http.MethodGet, "/records/?date=2026-03-09", "", reception)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Nil(t, got[1]["ordinal"])
	assert.NotNil(t, got[1]["void"])
}

func TestHandler_BadInput(t *testing.T) {
	srv, _ := newServer(t)

	assert.Equal(t, http.StatusBadRequest, do(srv, http.MethodGet, "/records/not-a-uuid", "", reception).Code)
	assert.Equal(t, http.StatusBadRequest, do(srv, http.MethodGet, "/records/?date=10/03/2026", "", reception).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(srv, http.MethodPatch, "/records/"+uuid.NewString()+"/payment-method", `{"payment_method":"barter"}`, reception).Code)
}
