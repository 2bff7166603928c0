package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
)

type amountsResponse struct {
	Cash    decimal.Decimal `json:"cash"`
	Card    decimal.Decimal `json:"card"`
	Deposit decimal.Decimal `json:"deposit"`
}

func toAmounts(a reconciliation.Amounts) amountsResponse {
	return amountsResponse{Cash: a.Cash, Card: a.Card, Deposit: a.Deposit}
}

type methodTotalResponse struct {
	Method billing.PaymentMethod `json:"method"`
	Count  int                   `json:"count"`
	Total  decimal.Decimal       `json:"total"`
}

type expectedResponse struct {
	Date            string                `json:"date"`
	Expected        amountsResponse       `json:"expected"`
	ByPaymentMethod []methodTotalResponse `json:"by_payment_method"`
	TotalRevenue    decimal.Decimal       `json:"total_revenue"`
	TotalExpenses   decimal.Decimal       `json:"total_expenses"`
	CashExpenses    decimal.Decimal       `json:"cash_expenses"`
}

func toExpectedResponse(exp reconciliation.Expected) expectedResponse {
	resp := expectedResponse{
		Date:            exp.Date.Format(time.DateOnly),
		Expected:        toAmounts(exp.Amounts),
		ByPaymentMethod: make([]methodTotalResponse, len(exp.ByPaymentMethod)),
		TotalRevenue:    exp.TotalRevenue,
		TotalExpenses:   exp.TotalExpenses,
		CashExpenses:    exp.CashExpenses,
	}

	for i, mt := range exp.ByPaymentMethod {
		resp.ByPaymentMethod[i] = methodTotalResponse{Method: mt.Method, Count: mt.Count, Total: mt.Total}
	}

	return resp
}

type resultResponse struct {
	Date          string          `json:"date"`
	Expected      amountsResponse `json:"expected"`
	Counted       amountsResponse `json:"counted"`
	Difference    amountsResponse `json:"difference"`
	IsBalanced    bool            `json:"is_balanced"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Tolerance     decimal.Decimal `json:"tolerance"`
}

func toResultResponse(res reconciliation.Result) resultResponse {
	return resultResponse{
		Date:          res.Date.Format(time.DateOnly),
		Expected:      toAmounts(res.Expected),
		Counted:       toAmounts(res.Counted),
		Difference:    toAmounts(res.Difference),
		IsBalanced:    res.IsBalanced,
		TotalRevenue:  res.TotalRevenue,
		TotalExpenses: res.TotalExpenses,
		Tolerance:     res.Tolerance,
	}
}

type snapshotResponse struct {
	resultResponse
	ClosedBy  string    `json:"closed_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toSnapshotResponse(snap *reconciliation.Snapshot) snapshotResponse {
	return snapshotResponse{
		resultResponse: toResultResponse(snap.Result),
		ClosedBy:       snap.ClosedBy,
		CreatedAt:      snap.CreatedAt,
	}
}
