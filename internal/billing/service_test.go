package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
)

var reception = actor.Actor{ID: "maria", Role: actor.RoleReception}

func TestService_Create(t *testing.T) {
	studyID := uuid.New()
	date := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	custom := decimal.NewFromInt(80)

	type args struct {
		params billing.CreateParams
		by     actor.Actor
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(repo *billing.MockRepository, num *billing.MockNumberer, prices *billing.MockPriceBook)
		verify    func(t *testing.T, rec *billing.Record)
		wantField string
		wantErr   bool
	}

	base := billing.CreateParams{
		Date:          date,
		PatientName:   "  Ana López ",
		PaymentMethod: billing.MethodCash,
		ChargeTier:    billing.TierNormal,
		Items:         []billing.ItemParams{{StudyID: studyID}},
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: base, by: reception},
			setupMock: func(_ *billing.MockRepository, num *billing.MockNumberer, prices *billing.MockPriceBook) {
				prices.EXPECT().
					Quote(gomock.Any(), studyID, billing.TierNormal).
					Return(billing.Quote{StudyName: "RX Tórax", CommissionPct: decimal.NewFromInt(10), Price: decimal.NewFromInt(150)}, nil)
				num.EXPECT().
					Register(gomock.Any(), gomock.Any(), reception).
					DoAndReturn(func(_ context.Context, rec *billing.Record, _ actor.Actor) error {
						rec.ID = uuid.New()
						rec.Ordinal = new(1)
						return nil
					})
			},
			verify: func(t *testing.T, rec *billing.Record) {
				assert.Equal(t, "Ana López", rec.PatientName)
				assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), rec.Date)
				assert.Equal(t, "maria", rec.CreatedBy)
				require.Len(t, rec.LineItems, 1)
				assert.Equal(t, "RX Tórax", rec.LineItems[0].StudyName)
				assert.True(t, decimal.NewFromInt(150).Equal(rec.Total()))
				assert.Equal(t, 1, *rec.Ordinal)
			},
		},
		{
			name: "CustomTierUsesGivenPrice",
			args: args{
				params: func() billing.CreateParams {
					p := base
					p.ChargeTier = billing.TierCustom
					p.Items = []billing.ItemParams{{StudyID: studyID, Price: &custom}}
					return p
				}(),
				by: reception,
			},
			setupMock: func(_ *billing.MockRepository, num *billing.MockNumberer, prices *billing.MockPriceBook) {
				prices.EXPECT().
					Quote(gomock.Any(), studyID, billing.TierCustom).
					Return(billing.Quote{StudyName: "RX Tórax", Price: decimal.NewFromInt(150)}, nil)
				num.EXPECT().Register(gomock.Any(), gomock.Any(), reception).Return(nil)
			},
			verify: func(t *testing.T, rec *billing.Record) {
				assert.True(t, custom.Equal(rec.LineItems[0].Price))
			},
		},
		{
			name: "CustomTierWithoutPrice",
			args: args{
				params: func() billing.CreateParams {
					p := base
					p.ChargeTier = billing.TierCustom
					return p
				}(),
				by: reception,
			},
			setupMock: func(_ *billing.MockRepository, _ *billing.MockNumberer, prices *billing.MockPriceBook) {
				prices.EXPECT().Quote(gomock.Any(), studyID, billing.TierCustom).Return(billing.Quote{}, nil)
			},
			wantField: "price",
			wantErr:   true,
		},
		{
			name: "MissingPatientName",
			args: args{
				params: func() billing.CreateParams {
					p := base
					p.PatientName = "   "
					return p
				}(),
				by: reception,
			},
			wantField: "patient_name",
			wantErr:   true,
		},
		{
			name: "ExtrasOnRegularVisit",
			args: args{
				params: func() billing.CreateParams {
					p := base
					p.Extras = billing.MobileExtras{ImagingPlate: true}
					return p
				}(),
				by: reception,
			},
			wantField: "extras",
			wantErr:   true,
		},
		{
			name:      "MissingActor",
			args:      args{params: base, by: actor.Actor{}},
			wantField: "actor",
			wantErr:   true,
		},
		{
			name: "RegisterError",
			args: args{params: base, by: reception},
			setupMock: func(_ *billing.MockRepository, num *billing.MockNumberer, prices *billing.MockPriceBook) {
				prices.EXPECT().Quote(gomock.Any(), studyID, billing.TierNormal).Return(billing.Quote{Price: decimal.NewFromInt(1)}, nil)
				num.EXPECT().Register(gomock.Any(), gomock.Any(), reception).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := billing.NewMockRepository(ctrl)
			num := billing.NewMockNumberer(ctrl)
			prices := billing.NewMockPriceBook(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, num, prices)
			}

			svc := billing.NewService(repo, num, prices)
			got, err := svc.Create(context.Background(), tt.args.params, tt.args.by)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				if tt.wantField != "" {
					var ve *apperr.ValidationError
					require.ErrorAs(t, err, &ve)
					assert.Equal(t, tt.wantField, ve.Field)
				}

				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func TestService_AddLineItem_VoidedRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := billing.NewMockRepository(ctrl)
	svc := billing.NewService(repo, billing.NewMockNumberer(ctrl), billing.NewMockPriceBook(ctrl))

	id := uuid.New()
	repo.EXPECT().GetRecord(gomock.Any(), id).Return(&billing.Record{ID: id, Void: &billing.Void{Reason: "dup"}}, nil)

	_, err := svc.AddLineItem(context.Background(), id, billing.ItemParams{StudyID: uuid.New()})
	assert.ErrorIs(t, err, apperr.ErrAlreadyVoided)
}

func TestService_AddLineItem_UsesRecordTier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := billing.NewMockRepository(ctrl)
	prices := billing.NewMockPriceBook(ctrl)
	svc := billing.NewService(repo, billing.NewMockNumberer(ctrl), prices)

	id := uuid.New()
	studyID := uuid.New()

	repo.EXPECT().GetRecord(gomock.Any(), id).Return(&billing.Record{ID: id, ChargeTier: billing.TierSocial}, nil)
	prices.EXPECT().Quote(gomock.Any(), studyID, billing.TierSocial).Return(billing.Quote{StudyName: "USG", Price: decimal.NewFromInt(90)}, nil)
	repo.EXPECT().
		AddLineItem(gomock.Any(), id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, item *billing.LineItem) error {
			item.ID = uuid.New()
			return nil
		})

	item, err := svc.AddLineItem(context.Background(), id, billing.ItemParams{StudyID: studyID})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.True(t, decimal.NewFromInt(90).Equal(item.Price))
}

func TestService_RemoveLineItem_KeepsLastStudy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := billing.NewMockRepository(ctrl)
	svc := billing.NewService(repo, billing.NewMockNumberer(ctrl), billing.NewMockPriceBook(ctrl))

	id, itemID := uuid.New(), uuid.New()
	repo.EXPECT().GetRecord(gomock.Any(), id).Return(&billing.Record{ID: id, LineItems: []billing.LineItem{{ID: itemID}}}, nil)

	err := svc.RemoveLineItem(context.Background(), id, itemID)

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)
}

func TestService_CorrectPaymentMethod(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		method    billing.PaymentMethod
		setupMock func(m *billing.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			method: billing.MethodCard,
			setupMock: func(m *billing.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), id).Return(&billing.Record{ID: id}, nil)
				m.EXPECT().UpdatePaymentMethod(gomock.Any(), id, billing.MethodCard).Return(nil)
			},
		},
		{
			name:   "NotFound",
			method: billing.MethodCard,
			setupMock: func(m *billing.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), id).Return(nil, apperr.ErrNotFound)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:   "Voided",
			method: billing.MethodCard,
			setupMock: func(m *billing.MockRepository) {
				m.EXPECT().GetRecord(gomock.Any(), id).Return(&billing.Record{ID: id, Void: &billing.Void{}}, nil)
			},
			wantErr: apperr.ErrAlreadyVoided,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := billing.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := billing.NewService(repo, billing.NewMockNumberer(ctrl), billing.NewMockPriceBook(ctrl))
			err := svc.CorrectPaymentMethod(context.Background(), id, tt.method)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}

	t.Run("UnknownMethod", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := billing.NewService(billing.NewMockRepository(ctrl), billing.NewMockNumberer(ctrl), billing.NewMockPriceBook(ctrl))

		var ve *apperr.ValidationError
		require.ErrorAs(t, svc.CorrectPaymentMethod(context.Background(), id, "cheque"), &ve)
	})
}
