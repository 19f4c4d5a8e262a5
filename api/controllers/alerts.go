package controllers

import (
	"net/http"
	"strings"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/responses"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/validators"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/alerts"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
)

// AlertList returns the alerts of userId. ?userType= defaults to the
// caller's role.
func AlertList(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("alert"))
			return
		}
		claims, err := requireClaims(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.URLParamID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userType := claims.Role
		if raw := strings.TrimSpace(r.URL.Query().Get("userType")); raw != "" {
			if userType, err = enums.ParseRole(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid userType"))
				return
			}
		}

		list, err := svc.List(r.Context(), claims, userID, userType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AlertMarkRead(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("alert"))
			return
		}
		claims, err := requireClaims(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alertID, err := validators.URLParamID(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkRead(r.Context(), claims, alertID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Alert marked as read")
	}
}

func AlertDelete(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("alert"))
			return
		}
		claims, err := requireClaims(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alertID, err := validators.URLParamID(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), claims, alertID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Alert deleted successfully")
	}
}
