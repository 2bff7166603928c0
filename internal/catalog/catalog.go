// Package catalog holds the studies the clinic offers, their tier prices and
// the referring doctors a visit can be attributed to.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
)

type Study struct {
	ID            uuid.UUID
	Code          string
	Name          string
	Category      string
	PriceNormal   decimal.Decimal
	PriceSocial   decimal.Decimal
	PriceSpecial  decimal.Decimal
	CommissionPct decimal.Decimal
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// PriceFor returns the list price of the tier. The custom tier has no list
// price; the amount agreed at intake replaces it.
func (s *Study) PriceFor(tier billing.ChargeTier) decimal.Decimal {
	switch tier {
	case billing.TierSocial:
		return s.PriceSocial
	case billing.TierSpecial:
		return s.PriceSpecial
	case billing.TierCustom:
		return decimal.Zero
	default:
		return s.PriceNormal
	}
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// ImportResult summarizes one catalog CSV upload.
type ImportResult struct {
	Charset  string
	Imported int
	Skipped  []RowError
}

// RowError explains why a data row was left out of an import.
type RowError struct {
	Row    int
	Reason string
}
