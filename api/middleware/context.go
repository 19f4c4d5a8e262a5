package middleware

import (
	"context"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
)

type contextKey string

const ctxClaims contextKey = "access_claims"

// WithClaims injects verified access claims into the context.
func WithClaims(ctx context.Context, claims *auth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

// ClaimsFromContext returns the caller's claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *auth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(ctxClaims).(*auth.AccessTokenClaims)
	return claims
}

func UserIDFromContext(ctx context.Context) int64 {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}

func RoleFromContext(ctx context.Context) enums.Role {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Role
	}
	return ""
}

// LocationIDFromContext returns the supermarket location bound to an owner token.
func LocationIDFromContext(ctx context.Context) (int64, bool) {
	claims := ClaimsFromContext(ctx)
	if claims == nil || claims.LocationID == nil {
		return 0, false
	}
	return *claims.LocationID, true
}
