package sequence_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
)

// memStore is an in-memory Repository. BeginDay holds a store-wide lock until
// the unit of work ends, the way the advisory lock serializes a day.
type memStore struct {
	lock sync.Mutex

	records map[uuid.UUID]*billing.Record
	audit   []sequence.AuditEntry
	tick    time.Time

	failShift bool
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[uuid.UUID]*billing.Record),
		tick:    time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func cloneRecord(r *billing.Record) *billing.Record {
	c := *r
	if r.Ordinal != nil {
		c.Ordinal = new(*r.Ordinal)
	}

	if r.Void != nil {
		v := *r.Void
		c.Void = &v
	}

	c.LineItems = slices.Clone(r.LineItems)

	return &c
}

func (s *memStore) GetRecord(_ context.Context, id uuid.UUID) (*billing.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	return cloneRecord(r), nil
}

func (s *memStore) BeginDay(_ context.Context, date time.Time) (sequence.DayTx, error) {
	s.lock.Lock()

	work := make(map[uuid.UUID]*billing.Record, len(s.records))
	for id, r := range s.records {
		work[id] = cloneRecord(r)
	}

	return &memTx{store: s, day: date, work: work}, nil
}

// ordinals returns the current ordinal of every record, nil when unnumbered.
func (s *memStore) ordinals() map[uuid.UUID]*int {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make(map[uuid.UUID]*int, len(s.records))
	for id, r := range s.records {
		out[id] = cloneRecord(r).Ordinal
	}

	return out
}

func (s *memStore) slots(day time.Time) []sequence.Slot {
	s.lock.Lock()
	defer s.lock.Unlock()

	return collectSlots(s.records, day)
}

func (s *memStore) set(id uuid.UUID, ordinal int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.records[id].Ordinal = new(ordinal)
}

func collectSlots(records map[uuid.UUID]*billing.Record, day time.Time) []sequence.Slot {
	var slots []sequence.Slot

	for _, r := range records {
		if r.Date.Equal(day) && r.Numbered() {
			s := sequence.Slot{RecordID: r.ID, CreatedAt: r.CreatedAt}
			if r.Ordinal != nil {
				s.Ordinal = new(*r.Ordinal)
			}

			slots = append(slots, s)
		}
	}

	slices.SortFunc(slots, func(a, b sequence.Slot) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return slots
}

type memTx struct {
	store *memStore
	day   time.Time
	work  map[uuid.UUID]*billing.Record
	audit []sequence.AuditEntry
	done  bool
}

func (tx *memTx) MaxOrdinal(context.Context) (int, error) {
	last := 0

	for _, r := range tx.work {
		if r.Date.Equal(tx.day) && r.Numbered() && r.Ordinal != nil && *r.Ordinal > last {
			last = *r.Ordinal
		}
	}

	return last, nil
}

func (tx *memTx) InsertRecord(_ context.Context, rec *billing.Record) error {
	tx.store.tick = tx.store.tick.Add(time.Minute)
	rec.ID = uuid.New()
	rec.CreatedAt = tx.store.tick
	tx.work[rec.ID] = cloneRecord(rec)

	return nil
}

func (tx *memTx) LockRecord(_ context.Context, id uuid.UUID) (*billing.Record, error) {
	r, ok := tx.work[id]
	if !ok || !r.Date.Equal(tx.day) {
		return nil, apperr.ErrNotFound
	}

	return cloneRecord(r), nil
}

func (tx *memTx) MarkVoided(_ context.Context, id uuid.UUID, void billing.Void) error {
	r := tx.work[id]
	r.Void = &void
	r.Ordinal = nil

	return nil
}

func (tx *memTx) ShiftDown(_ context.Context, above int) (int, error) {
	if tx.store.failShift {
		return 0, errors.New("connection reset")
	}

	n := 0

	for _, r := range tx.work {
		if r.Date.Equal(tx.day) && r.Numbered() && r.Ordinal != nil && *r.Ordinal > above {
			*r.Ordinal--
			n++
		}
	}

	return n, nil
}

func (tx *memTx) Slots(context.Context) ([]sequence.Slot, error) {
	return collectSlots(tx.work, tx.day), nil
}

func (tx *memTx) SetOrdinals(_ context.Context, ordinals map[uuid.UUID]int) error {
	for id, o := range ordinals {
		if r, ok := tx.work[id]; ok && r.Numbered() {
			r.Ordinal = new(o)
		}
	}

	return nil
}

func (tx *memTx) AppendAudit(_ context.Context, entry sequence.AuditEntry) error {
	tx.audit = append(tx.audit, entry)
	return nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}

	tx.store.records = tx.work
	tx.store.audit = append(tx.store.audit, tx.audit...)
	tx.done = true
	tx.store.lock.Unlock()

	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}

	tx.done = true
	tx.store.lock.Unlock()

	return nil
}
