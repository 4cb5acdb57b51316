package internal

import (
	"context"
)

type ctxKey string

const ContextActorKey ctxKey = "actor"

// Actor is the authenticated admin attached to a request context by the
// auth middleware. Permissions hold the effective set (role plus groups);
// a "*" entry means the role carries the wildcard.
type Actor struct {
	ID          string
	Name        string
	SessionID   string
	Permissions []string
}

func (a *Actor) HasPermission(permission string) bool {
	for _, p := range a.Permissions {
		if p == "*" || p == permission {
			return true
		}
	}
	return false
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(ContextActorKey).(*Actor)
	return actor, ok && actor != nil
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

// Pagination is the page/limit pair shared by every list endpoint.
// Page is 1-based; a zero value means "no pagination".
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Enabled() bool {
	return p.Page > 0 && p.Limit > 0
}

func (p Pagination) Offset() int {
	if !p.Enabled() {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
