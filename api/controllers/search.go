package controllers

import (
	"net/http"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/responses"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/validators"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/search"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/types"
)

// Search handles ?query=&supermarketType=&lat=&lng=&radius=.
func Search(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("search"))
			return
		}
		claims, err := requireClaims(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query, err := parseSearchQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		results, err := svc.Search(r.Context(), claims, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

func parseSearchQuery(r *http.Request) (search.Query, error) {
	query := search.Query{Text: validators.SanitizeString(r.URL.Query().Get("query"), 100)}

	supermarketID, _, err := validators.ParseQueryID(r, "supermarketType")
	if err != nil {
		return query, err
	}
	query.SupermarketID = supermarketID

	lat, hasLat, err := validators.ParseQueryFloat(r, "lat")
	if err != nil {
		return query, err
	}
	lng, hasLng, err := validators.ParseQueryFloat(r, "lng")
	if err != nil {
		return query, err
	}
	if hasLat != hasLng {
		return query, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng must be sent together")
	}
	if hasLat {
		query.Origin = &types.Coordinates{Lat: lat, Lng: lng}
	}

	radius, hasRadius, err := validators.ParseQueryFloat(r, "radius")
	if err != nil {
		return query, err
	}
	if hasRadius {
		query.RadiusKm = &radius
	}
	return query, nil
}
