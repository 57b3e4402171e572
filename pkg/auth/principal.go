package auth

import (
	"context"

	"hostelbook/pkg/model"
)

type principalKey struct{}

// Principal is the verified caller identity: user id, role and, for admins,
// the managed hostel.
type Principal struct {
	UserID   string
	Role     string
	HostelID string
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

func (p Principal) IsStudent() bool {
	return p.Role == model.RoleStudent
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
