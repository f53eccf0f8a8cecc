package auth

import (
	"context"
)

var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithPrincipal sets the Principal in the given context. The value is
// strictly request-scoped: it is set once by the JWT middleware and is
// not inherited by background work spawned with a fresh context.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, principal)
}

// PrincipalFromContext finds the current caller in the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Principal)
	return raw, ok && raw != nil
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// EnrichContext stores both claims and the derived principal; it is the
// ContextEnricher the JWT middleware uses.
func EnrichContext(ctx context.Context, claims AuthClaims) context.Context {
	ctx = WithClaimsContext(ctx, claims)
	return WithPrincipal(ctx, PrincipalFromClaims(claims))
}

// IsAtLeastFromContext checks the caller's role level directly from the context
func IsAtLeastFromContext(ctx context.Context, minRole UserRole) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return claims.IsAtLeast(string(minRole))
}
