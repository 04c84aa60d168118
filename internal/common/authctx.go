package common

import (
	"context"
	"sort"
)

type ctxKey string

const principalKey ctxKey = "auth/principal"

// Principal is the authorization context of the caller: who they are and the
// permission tokens they were granted at login.
type Principal struct {
	UserID string
	Role   string
	perms  map[string]struct{}
}

// NewPrincipal builds a Principal from a permission token list.
func NewPrincipal(userID, role string, permissions []string) Principal {
	perms := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		if p != "" {
			perms[p] = struct{}{}
		}
	}
	return Principal{UserID: userID, Role: role, perms: perms}
}

// Can reports whether the principal holds the permission token.
func (p Principal) Can(permission string) bool {
	_, ok := p.perms[permission]
	return ok
}

// Permissions returns the granted tokens in sorted order.
func (p Principal) Permissions() []string {
	out := make([]string, 0, len(p.perms))
	for perm := range p.perms {
		out = append(out, perm)
	}
	sort.Strings(out)
	return out
}

// WithPrincipal stores the principal on the provided context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the principal from the context if present.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// UserID extracts the authenticated user identifier from the context if present.
func UserID(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.UserID == "" {
		return "", false
	}
	return p.UserID, true
}
