// Package commission aggregates the referral base of each doctor.
package commission

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
)

// Attribution decides which study percentage applies to a multi-study visit.
type Attribution string

const (
	// AttributionFirstItem charges the whole visit at the first study's rate.
	AttributionFirstItem Attribution = "first_item"
	// AttributionPerItem charges every study at its own rate.
	AttributionPerItem Attribution = "per_item"
)

func ParseAttribution(s string) (Attribution, error) {
	switch a := Attribution(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AttributionFirstItem, nil
	case AttributionFirstItem, AttributionPerItem:
		return a, nil
	}

	return "", fmt.Errorf("unknown commission attribution %q", s)
}

var hundred = decimal.NewFromInt(100)

// Eligible reports whether a visit counts toward its referring doctor's base.
func Eligible(rec *billing.Record) bool {
	switch {
	case rec.IsVoided():
		return false
	case rec.DoctorID == nil || rec.NoDoctorInfo:
		return false
	case rec.ChargeTier == billing.TierSocial || rec.ChargeTier == billing.TierCustom:
		return false
	case rec.PaymentMethod == billing.MethodAccountStatement:
		return false
	case rec.IsMobileService:
		return false
	}

	return true
}

type StudyTotal struct {
	Study      string
	Patients   int
	Base       decimal.Decimal
	Commission decimal.Decimal
}

type DoctorTotal struct {
	DoctorID   uuid.UUID
	DoctorName string
	Patients   int
	Base       decimal.Decimal
	Commission decimal.Decimal
	Studies    []StudyTotal
}

type doctorAcc struct {
	total   DoctorTotal
	studies map[string]*StudyTotal
}

func (a *doctorAcc) study(name string) *StudyTotal {
	st, ok := a.studies[name]
	if !ok {
		st = &StudyTotal{Study: name}
		a.studies[name] = st
	}

	return st
}

// Aggregate groups eligible visits by doctor, sorted by doctor name, with a
// per-study breakdown sorted by study name.
func Aggregate(records []*billing.Record, attribution Attribution) []DoctorTotal {
	byDoctor := make(map[uuid.UUID]*doctorAcc)

	for _, rec := range records {
		if !Eligible(rec) {
			continue
		}

		acc, ok := byDoctor[*rec.DoctorID]
		if !ok {
			acc = &doctorAcc{
				total:   DoctorTotal{DoctorID: *rec.DoctorID, DoctorName: rec.DoctorName},
				studies: make(map[string]*StudyTotal),
			}
			byDoctor[*rec.DoctorID] = acc
		}

		acc.total.Patients++

		total := rec.Total()
		acc.total.Base = acc.total.Base.Add(total)

		if len(rec.LineItems) == 0 {
			continue
		}

		switch attribution {
		case AttributionPerItem:
			seen := make(map[string]bool, len(rec.LineItems))

			for _, li := range rec.LineItems {
				amount := li.Price.Mul(li.CommissionPct).Div(hundred)

				st := acc.study(li.StudyName)
				if !seen[li.StudyName] {
					seen[li.StudyName] = true
					st.Patients++
				}

				st.Base = st.Base.Add(li.Price)
				st.Commission = st.Commission.Add(amount)
				acc.total.Commission = acc.total.Commission.Add(amount)
			}
		default:
			first := rec.LineItems[0]
			amount := total.Mul(first.CommissionPct).Div(hundred)

			st := acc.study(first.StudyName)
			st.Patients++
			st.Base = st.Base.Add(total)
			st.Commission = st.Commission.Add(amount)
			acc.total.Commission = acc.total.Commission.Add(amount)
		}
	}

	out := make([]DoctorTotal, 0, len(byDoctor))

	for _, acc := range byDoctor {
		for _, st := range acc.studies {
			acc.total.Studies = append(acc.total.Studies, *st)
		}

		slices.SortFunc(acc.total.Studies, func(a, b StudyTotal) int { return strings.Compare(a.Study, b.Study) })
		out = append(out, acc.total)
	}

	slices.SortFunc(out, func(a, b DoctorTotal) int {
		if c := strings.Compare(a.DoctorName, b.DoctorName); c != 0 {
			return c
		}

		return strings.Compare(a.DoctorID.String(), b.DoctorID.String())
	})

	return out
}
