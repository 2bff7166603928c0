package commission

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
)

// RecordLister is the slice of the billing store the summary needs.
type RecordLister interface {
	ListRecords(ctx context.Context, filter billing.ListFilter) ([]*billing.Record, error)
}

type Service struct {
	records     RecordLister
	attribution Attribution
}

func NewService(records RecordLister, attribution Attribution) *Service {
	if attribution == "" {
		attribution = AttributionFirstItem
	}

	return &Service{records: records, attribution: attribution}
}

// Summary aggregates every active visit between from and to, both inclusive.
func (s *Service) Summary(ctx context.Context, from, to time.Time) ([]DoctorTotal, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	if to.Before(from) {
		return nil, apperr.Invalid("to", "must not be before from")
	}

	recs, err := s.records.ListRecords(ctx, billing.ListFilter{From: &from, To: &to})
	if err != nil {
		return nil, apperr.Store("listing records", err)
	}

	return Aggregate(recs, s.attribution), nil
}
