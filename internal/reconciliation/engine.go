// Package reconciliation compares what a day's billing says the till should
// hold against what the operator counted.
package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
)

// Channel is one of the buckets payment methods collapse into at cash-up.
type Channel string

const (
	ChannelCash    Channel = "cash"
	ChannelCard    Channel = "card"
	ChannelDeposit Channel = "deposit"
)

var Channels = []Channel{ChannelCash, ChannelCard, ChannelDeposit}

// DefaultTolerance is also the ceiling: a caller may tighten it, never widen it.
var DefaultTolerance = decimal.RequireFromString("0.01")

// ChannelFor maps a payment method to its channel. Account-statement billing
// is settled later and belongs to no channel.
func ChannelFor(m billing.PaymentMethod) (Channel, bool) {
	switch m {
	case billing.MethodCash:
		return ChannelCash, true
	case billing.MethodCard:
		return ChannelCard, true
	case billing.MethodInvoicedCash, billing.MethodBankTransfer:
		return ChannelDeposit, true
	}

	return "", false
}

// Amounts holds one value per channel. The zero value has every channel at 0.
type Amounts struct {
	Cash    decimal.Decimal
	Card    decimal.Decimal
	Deposit decimal.Decimal
}

func (a Amounts) Get(c Channel) decimal.Decimal {
	switch c {
	case ChannelCash:
		return a.Cash
	case ChannelCard:
		return a.Card
	case ChannelDeposit:
		return a.Deposit
	}

	return decimal.Zero
}

func (a *Amounts) add(c Channel, v decimal.Decimal) {
	switch c {
	case ChannelCash:
		a.Cash = a.Cash.Add(v)
	case ChannelCard:
		a.Card = a.Card.Add(v)
	case ChannelDeposit:
		a.Deposit = a.Deposit.Add(v)
	}
}

// Sub returns a - b channel by channel.
func (a Amounts) Sub(b Amounts) Amounts {
	return Amounts{
		Cash:    a.Cash.Sub(b.Cash),
		Card:    a.Card.Sub(b.Card),
		Deposit: a.Deposit.Sub(b.Deposit),
	}
}

type MethodTotal struct {
	Method billing.PaymentMethod
	Count  int
	Total  decimal.Decimal
}

type Expected struct {
	Date            time.Time
	Amounts         Amounts
	ByPaymentMethod []MethodTotal
	TotalRevenue    decimal.Decimal
	TotalExpenses   decimal.Decimal
	CashExpenses    decimal.Decimal
}

// ComputeExpected derives the channel totals of a day. Voided records are
// skipped; mobile-service records count like any other. Only cash expenses
// are netted, and only against the cash channel.
func ComputeExpected(date time.Time, records []*billing.Record, expenses []*expense.Expense) Expected {
	exp := Expected{Date: date}

	byMethod := make(map[billing.PaymentMethod]*MethodTotal, len(billing.PaymentMethods))
	for _, m := range billing.PaymentMethods {
		exp.ByPaymentMethod = append(exp.ByPaymentMethod, MethodTotal{Method: m})
	}

	for i := range exp.ByPaymentMethod {
		byMethod[exp.ByPaymentMethod[i].Method] = &exp.ByPaymentMethod[i]
	}

	for _, rec := range records {
		if rec.IsVoided() {
			continue
		}

		total := rec.Total()
		exp.TotalRevenue = exp.TotalRevenue.Add(total)

		if mt, ok := byMethod[rec.PaymentMethod]; ok {
			mt.Count++
			mt.Total = mt.Total.Add(total)
		}

		if ch, ok := ChannelFor(rec.PaymentMethod); ok {
			exp.Amounts.add(ch, total)
		}
	}

	for _, e := range expenses {
		exp.TotalExpenses = exp.TotalExpenses.Add(e.Amount)

		if e.IsCash() {
			exp.CashExpenses = exp.CashExpenses.Add(e.Amount)
		}
	}

	exp.Amounts.Cash = exp.Amounts.Cash.Sub(exp.CashExpenses)

	return exp
}

type Result struct {
	Date          time.Time
	Expected      Amounts
	Counted       Amounts
	Difference    Amounts
	IsBalanced    bool
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	Tolerance     decimal.Decimal
}

// ClampTolerance keeps t in (0, DefaultTolerance].
func ClampTolerance(t decimal.Decimal) decimal.Decimal {
	if !t.IsPositive() || t.GreaterThan(DefaultTolerance) {
		return DefaultTolerance
	}

	return t
}

// Reconcile computes counted - expected per channel. The day balances when
// every difference is strictly within the tolerance.
func Reconcile(expected Expected, counted Amounts, tolerance decimal.Decimal) Result {
	tolerance = ClampTolerance(tolerance)
	diff := counted.Sub(expected.Amounts)

	balanced := true

	for _, c := range Channels {
		if !diff.Get(c).Abs().LessThan(tolerance) {
			balanced = false
		}
	}

	return Result{
		Date:          expected.Date,
		Expected:      expected.Amounts,
		Counted:       counted,
		Difference:    diff,
		IsBalanced:    balanced,
		TotalRevenue:  expected.TotalRevenue,
		TotalExpenses: expected.TotalExpenses,
		Tolerance:     tolerance,
	}
}
