package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/middleware"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func ownerClaims(locationID int64) *pkgAuth.AccessTokenClaims {
	return &pkgAuth.AccessTokenClaims{UserID: 7, Role: enums.RoleOwner, Country: "Hungary", LocationID: &locationID}
}

func customerClaims(userID int64) *pkgAuth.AccessTokenClaims {
	return &pkgAuth.AccessTokenClaims{UserID: userID, Role: enums.RoleCustomer, Country: "Hungary"}
}

// serve runs handler with the given claims and chi route params.
func serve(t *testing.T, handler http.Handler, req *http.Request, claims *pkgAuth.AccessTokenClaims, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if claims != nil {
		ctx = middleware.WithClaims(ctx, claims)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}
