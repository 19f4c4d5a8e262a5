package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/responses"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth/session"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/config"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
)

const expiredTokenMessage = "token expired, please log in again"

// Auth validates a bearer token and seeds the request context with the claims.
// A nil verifier skips the server-side session check.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			ctx, err := authenticate(r.Context(), cfg, verifier, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and lets
// anonymous requests through. A token that is sent but invalid is rejected.
func OptionalAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r.Context(), cfg, verifier, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger, token string) (context.Context, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrTokenExpired) {
			return ctx, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, expiredTokenMessage)
		}
		return ctx, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	if verifier != nil {
		if claims.ID == "" {
			return ctx, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
		}
		ok, err := verifier.HasSession(ctx, claims.ID)
		if err != nil {
			return ctx, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return ctx, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	ctx = WithClaims(ctx, claims)
	if logg != nil {
		ctx = logg.WithUserID(ctx, claims.UserID)
		ctx = logg.WithActorRole(ctx, claims.Role.String())
		if claims.LocationID != nil {
			ctx = logg.WithLocationID(ctx, *claims.LocationID)
		}
	}
	return ctx, nil
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// ClaimsParser exposes the Auth token check to callers that receive the token
// outside the Authorization header, such as the websocket query string.
func ClaimsParser(cfg config.JWTConfig, verifier session.AccessSessionChecker) func(context.Context, string) (*pkgAuth.AccessTokenClaims, error) {
	return func(ctx context.Context, token string) (*pkgAuth.AccessTokenClaims, error) {
		ctx, err := authenticate(ctx, cfg, verifier, nil, token)
		if err != nil {
			return nil, err
		}
		return ClaimsFromContext(ctx), nil
	}
}
