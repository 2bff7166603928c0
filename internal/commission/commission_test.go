package commission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
)

type mockRepo struct {
	listRecordsFunc func(ctx context.Context, filter billing.ListFilter) ([]*billing.Record, error)
}

func (m *mockRepo) ListRecords(ctx context.Context, filter billing.ListFilter) ([]*billing.Record, error) {
	if m.listRecordsFunc != nil {
		return m.listRecordsFunc(ctx, filter)
	}

	return nil, nil
}

var (
	ruiz  = uuid.New()
	alvar = uuid.New()
)

func item(study string, price, pct int64) billing.LineItem {
	return billing.LineItem{StudyName: study, Price: decimal.NewFromInt(price), CommissionPct: decimal.NewFromInt(pct)}
}

func referred(doctor uuid.UUID, name string, items ...billing.LineItem) *billing.Record {
	return &billing.Record{
		DoctorID:      &doctor,
		DoctorName:    name,
		PaymentMethod: billing.MethodCash,
		ChargeTier:    billing.TierNormal,
		LineItems:     items,
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *billing.Record)
		want   bool
	}{
		{name: "regular referral", mutate: func(*billing.Record) {}, want: true},
		{name: "special tier", mutate: func(r *billing.Record) { r.ChargeTier = billing.TierSpecial }, want: true},
		{name: "voided", mutate: func(r *billing.Record) { r.Void = &billing.Void{Reason: "x"} }},
		{name: "no doctor", mutate: func(r *billing.Record) { r.DoctorID = nil }},
		{name: "flagged without doctor info", mutate: func(r *billing.Record) { r.NoDoctorInfo = true }},
		{name: "social tier", mutate: func(r *billing.Record) { r.ChargeTier = billing.TierSocial }},
		{name: "custom tier", mutate: func(r *billing.Record) { r.ChargeTier = billing.TierCustom }},
		{name: "account statement", mutate: func(r *billing.Record) { r.PaymentMethod = billing.MethodAccountStatement }},
		{name: "mobile service", mutate: func(r *billing.Record) { r.IsMobileService = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := referred(ruiz, "Dr. Ruiz", item("RX", 100, 10))
			tt.mutate(rec)
			assert.Equal(t, tt.want, Eligible(rec))
		})
	}
}

func TestAggregate_MobileContributesNothing(t *testing.T) {
	mobile := referred(ruiz, "Dr. Ruiz", item("RX", 100, 10))
	mobile.IsMobileService = true
	mobile.Extras = billing.MobileExtras{ImagingPlate: true, ImagingPlateFee: decimal.NewFromInt(25)}

	assert.True(t, decimal.NewFromInt(125).Equal(mobile.Total()))
	assert.Empty(t, Aggregate([]*billing.Record{mobile}, AttributionFirstItem))
}

func TestAggregate_Attribution(t *testing.T) {
	records := []*billing.Record{
		referred(ruiz, "Dr. Ruiz", item("RX", 100, 10), item("USG", 200, 20)),
		referred(ruiz, "Dr. Ruiz", item("USG", 300, 20)),
		referred(alvar, "Dra. Álvarez", item("RX", 50, 10)),
	}

	t.Run("first item", func(t *testing.T) {
		got := Aggregate(records, AttributionFirstItem)
		require.Len(t, got, 2)

		assert.Equal(t, "Dr. Ruiz", got[0].DoctorName)
		assert.Equal(t, 2, got[0].Patients)
		assert.True(t, decimal.NewFromInt(600).Equal(got[0].Base))
		// 300 * 10% + 300 * 20%
		assert.True(t, decimal.NewFromInt(90).Equal(got[0].Commission), got[0].Commission.String())

		require.Len(t, got[0].Studies, 2)
		assert.Equal(t, "RX", got[0].Studies[0].Study)
		assert.True(t, decimal.NewFromInt(30).Equal(got[0].Studies[0].Commission))
		assert.Equal(t, "USG", got[0].Studies[1].Study)
		assert.Equal(t, 1, got[0].Studies[1].Patients)

		assert.Equal(t, "Dra. Álvarez", got[1].DoctorName)
		assert.True(t, decimal.NewFromInt(5).Equal(got[1].Commission))
	})

	t.Run("per item", func(t *testing.T) {
		got := Aggregate(records, AttributionPerItem)
		require.Len(t, got, 2)

		// 100 * 10% + 200 * 20% + 300 * 20%
		assert.True(t, decimal.NewFromInt(110).Equal(got[0].Commission), got[0].Commission.String())
		assert.Equal(t, 2, got[0].Patients)

		require.Len(t, got[0].Studies, 2)
		assert.Equal(t, 2, got[0].Studies[1].Patients)
		assert.True(t, decimal.NewFromInt(500).Equal(got[0].Studies[1].Base))
	})
}

func TestAggregate_PerItemRepeatedStudy(t *testing.T) {
	records := []*billing.Record{
		referred(ruiz, "Dr. Ruiz", item("RX", 100, 10), item("RX", 80, 10)),
	}

	got := Aggregate(records, AttributionPerItem)
	require.Len(t, got, 1)
	require.Len(t, got[0].Studies, 1)

	assert.Equal(t, 1, got[0].Patients)
	assert.Equal(t, 1, got[0].Studies[0].Patients)
	assert.True(t, decimal.NewFromInt(180).Equal(got[0].Studies[0].Base))
	assert.True(t, decimal.NewFromInt(18).Equal(got[0].Studies[0].Commission))
}

func TestParseAttribution(t *testing.T) {
	a, err := ParseAttribution("")
	require.NoError(t, err)
	assert.Equal(t, AttributionFirstItem, a)

	a, err = ParseAttribution(" PER_ITEM ")
	require.NoError(t, err)
	assert.Equal(t, AttributionPerItem, a)

	_, err = ParseAttribution("prorated")
	assert.Error(t, err)
}

func TestService_Summary(t *testing.T) {
	from := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC)

	t.Run("loads the inclusive day range", func(t *testing.T) {
		repo := &mockRepo{
			listRecordsFunc: func(_ context.Context, filter billing.ListFilter) ([]*billing.Record, error) {
				assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *filter.From)
				assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *filter.To)
				assert.False(t, filter.IncludeVoided)

				return []*billing.Record{referred(ruiz, "Dr. Ruiz", item("RX", 100, 10))}, nil
			},
		}

		got, err := NewService(repo, "").Summary(context.Background(), from, to)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, decimal.NewFromInt(10).Equal(got[0].Commission))
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		_, err := NewService(&mockRepo{}, AttributionFirstItem).Summary(context.Background(), to, from)

		var ve *apperr.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		repo := &mockRepo{
			listRecordsFunc: func(context.Context, billing.ListFilter) ([]*billing.Record, error) {
				return nil, errors.New("timeout")
			},
		}

		_, err := NewService(repo, AttributionFirstItem).Summary(context.Background(), from, to)

		var se *apperr.StoreError
		assert.ErrorAs(t, err, &se)
	})
}
