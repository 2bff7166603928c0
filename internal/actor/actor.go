// Package actor identifies the staff member behind a mutating operation.
package actor

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
)

type Role string

const (
	RoleReception  Role = "reception"
	RoleAccounting Role = "accounting"
	RoleAdmin      Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleReception, RoleAccounting, RoleAdmin:
		return true
	}

	return false
}

// Actor is passed explicitly into every operation that changes state.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return apperr.Invalid("actor", "id is required")
	}

	if !a.Role.IsValid() {
		return apperr.Invalid("actor", "unknown role "+string(a.Role))
	}

	return nil
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type ctxKey struct{}

// WithContext is used by the transport edge only; services take the Actor as
// a parameter.
func WithContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}
