package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}

	return false
}

// Expense is an operating cost paid on a given day. Only cash expenses come
// out of the till.
type Expense struct {
	ID        uuid.UUID
	Date      time.Time
	Amount    decimal.Decimal
	Concept   string
	Method    Method
	CreatedBy string
	CreatedAt time.Time
}

func (e *Expense) IsCash() bool {
	return e.Method == MethodCash
}
