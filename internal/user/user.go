package users

import (
	"context"

	"github.com/google/uuid"
)

type ContextKey string

const ActorKey ContextKey = "actor"

type Role string

const (
	RoleSchoolAdmin Role = "school_admin"
	RoleSuperAdmin  Role = "super_admin"
)

func (r Role) Valid() bool {
	return r == RoleSchoolAdmin || r == RoleSuperAdmin
}

// Actor is the administrator a request acts on behalf of.
type Actor struct {
	ID       string     `json:"actorId"`
	Role     Role       `json:"role"`
	SchoolID *uuid.UUID `json:"schoolId,omitempty"`
}

func (a *Actor) IsSuperAdmin() bool {
	return a != nil && a.Role == RoleSuperAdmin
}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	val := ctx.Value(ActorKey)
	if val == nil {
		return nil, false
	}
	actor, ok := val.(*Actor)
	return actor, ok && actor != nil
}
