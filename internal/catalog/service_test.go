package catalog_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/catalog"
)

var (
	admin     = actor.Actor{ID: "lucia", Role: actor.RoleAdmin}
	reception = actor.Actor{ID: "maria", Role: actor.RoleReception}
)

func TestService_Quote(t *testing.T) {
	studyID := uuid.New()
	rx := &catalog.Study{
		ID:            studyID,
		Code:          "RX01",
		Name:          "RX Tórax",
		PriceNormal:   decimal.NewFromInt(150),
		PriceSocial:   decimal.NewFromInt(100),
		PriceSpecial:  decimal.NewFromInt(120),
		CommissionPct: decimal.NewFromInt(10),
		Active:        true,
	}

	type testCase struct {
		name      string
		tier      billing.ChargeTier
		setupMock func(m *catalog.MockRepository)
		wantPrice int64
		wantField string
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Normal",
			tier: billing.TierNormal,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetStudy(gomock.Any(), studyID).Return(rx, nil)
			},
			wantPrice: 150,
		},
		{
			name: "Social",
			tier: billing.TierSocial,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetStudy(gomock.Any(), studyID).Return(rx, nil)
			},
			wantPrice: 100,
		},
		{
			name: "Special",
			tier: billing.TierSpecial,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetStudy(gomock.Any(), studyID).Return(rx, nil)
			},
			wantPrice: 120,
		},
		{
			name: "CustomHasNoListPrice",
			tier: billing.TierCustom,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetStudy(gomock.Any(), studyID).Return(rx, nil)
			},
			wantPrice: 0,
		},
		{
			name: "UnknownStudy",
			tier: billing.TierNormal,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetStudy(gomock.Any(), studyID).Return(nil, apperr.ErrNotFound)
			},
			wantField: "study_id",
			wantErr:   true,
		},
		{
			name: "RetiredStudy",
			tier: billing.TierNormal,
			setupMock: func(m *catalog.MockRepository) {
				retired := *rx
				retired.Active = false
				m.EXPECT().GetStudy(gomock.Any(), studyID).Return(&retired, nil)
			},
			wantField: "study_id",
			wantErr:   true,
		},
		{
			name: "StoreFailure",
			tier: billing.TierNormal,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetStudy(gomock.Any(), studyID).Return(nil, errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := catalog.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := catalog.NewService(repo).Quote(context.Background(), studyID, tt.tier)
			if tt.wantErr {
				require.Error(t, err)

				if tt.wantField != "" {
					var ve *apperr.ValidationError
					require.ErrorAs(t, err, &ve)
					assert.Equal(t, tt.wantField, ve.Field)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "RX Tórax", got.StudyName)
			assert.True(t, decimal.NewFromInt(10).Equal(got.CommissionPct))
			assert.True(t, decimal.NewFromInt(tt.wantPrice).Equal(got.Price), got.Price.String())
		})
	}
}

func TestService_SaveStudy(t *testing.T) {
	social := decimal.NewFromInt(80)

	type testCase struct {
		name      string
		params    catalog.StudyParams
		by        actor.Actor
		setupMock func(m *catalog.MockRepository)
		verify    func(t *testing.T, s *catalog.Study)
		wantErr   error
		wantField string
	}

	tests := []testCase{
		{
			name: "TiersDefaultToNormal",
			params: catalog.StudyParams{
				Code:          " usg01 ",
				Name:          "Ultrasonido",
				PriceNormal:   decimal.NewFromInt(200),
				PriceSocial:   &social,
				CommissionPct: decimal.NewFromInt(15),
			},
			by: admin,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().UpsertStudies(gomock.Any(), gomock.Len(1)).Return(1, nil)
			},
			verify: func(t *testing.T, s *catalog.Study) {
				assert.Equal(t, "USG01", s.Code)
				assert.True(t, s.Active)
				assert.True(t, social.Equal(s.PriceSocial))
				assert.True(t, decimal.NewFromInt(200).Equal(s.PriceSpecial))
			},
		},
		{
			name:    "ReceptionCannotEditPrices",
			params:  catalog.StudyParams{Code: "X", Name: "X"},
			by:      reception,
			wantErr: apperr.ErrForbidden,
		},
		{
			name:      "CommissionOutOfRange",
			params:    catalog.StudyParams{Code: "X", Name: "X", CommissionPct: decimal.NewFromInt(101)},
			by:        admin,
			wantField: "commission_pct",
		},
		{
			name:      "NegativePrice",
			params:    catalog.StudyParams{Code: "X", Name: "X", PriceNormal: decimal.NewFromInt(-1)},
			by:        admin,
			wantField: "price_normal",
		},
		{
			name:      "MissingName",
			params:    catalog.StudyParams{Code: "X"},
			by:        admin,
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := catalog.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := catalog.NewService(repo).SaveStudy(context.Background(), tt.params, tt.by)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantField != "":
				var ve *apperr.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantField, ve.Field)
			default:
				require.NoError(t, err)
				tt.verify(t, got)
			}
		})
	}
}

func TestService_Import(t *testing.T) {
	const list = "code;name;normal;commission\nRX01;Tórax;150;10\nRX02;;100;0\n"

	t.Run("UpsertsParsedStudies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := catalog.NewMockRepository(ctrl)

		repo.EXPECT().UpsertStudies(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, studies []*catalog.Study) (int, error) {
				require.Len(t, studies, 1)
				assert.Equal(t, "RX01", studies[0].Code)

				return 1, nil
			})

		got, err := catalog.NewService(repo).Import(context.Background(), strings.NewReader(list), admin)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Imported)
		require.Len(t, got.Skipped, 1)
		assert.Equal(t, 3, got.Skipped[0].Row)
	})

	t.Run("UnreadableFile", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		_, err := catalog.NewService(catalog.NewMockRepository(ctrl)).
			Import(context.Background(), strings.NewReader("just;some;text\n"), admin)

		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "file", ve.Field)
	})

	t.Run("AdminOnly", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		_, err := catalog.NewService(catalog.NewMockRepository(ctrl)).
			Import(context.Background(), strings.NewReader(list), reception)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestService_CreateDoctor(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)

	repo.EXPECT().CreateDoctor(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *catalog.Doctor) error {
			d.ID = uuid.New()
			return nil
		})

	svc := catalog.NewService(repo)

	d, err := svc.CreateDoctor(context.Background(), "  Dr. Ruiz ", reception)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ruiz", d.Name)
	assert.NotEqual(t, uuid.Nil, d.ID)

	_, err = svc.CreateDoctor(context.Background(), " ", reception)

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}
