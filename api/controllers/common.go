package controllers

import (
	"net/http"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/middleware"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
)

func requireClaims(r *http.Request) (*pkgAuth.AccessTokenClaims, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return claims, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
