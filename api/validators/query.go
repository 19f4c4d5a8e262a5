package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// ParseQueryID reads a positive integer id from the query string. present is
// false when the parameter is absent.
func ParseQueryID(r *http.Request, key string) (id int64, present bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	id, err = parseID(raw, key)
	return id, true, err
}

// RequireQueryID is ParseQueryID for mandatory parameters.
func RequireQueryID(r *http.Request, key string) (int64, error) {
	id, present, err := ParseQueryID(r, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" is required").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseQueryFloat reads an optional float query parameter.
func ParseQueryFloat(r *http.Request, key string) (value float64, present bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	return value, true, nil
}

// URLParamID reads a positive integer route parameter.
func URLParamID(r *http.Request, key string) (int64, error) {
	return parseID(strings.TrimSpace(chi.URLParam(r, key)), key)
}

func parseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
