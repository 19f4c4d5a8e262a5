package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/shopspring/decimal"
)

const multipartMemory = 8 << 20

// ParseMultipart bounds the body at maxBytes and parses the form.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload too large").WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormString returns the trimmed form value.
func FormString(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// FormID parses a required positive integer form value.
func FormID(r *http.Request, key string) (int64, error) {
	raw := FormString(r, key)
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" is required").WithDetails(map[string]any{"field": key})
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key).WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// FormDecimal parses a required decimal form value.
func FormDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := FormString(r, key)
	if raw == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, key+" is required").WithDetails(map[string]any{"field": key})
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// FormFile returns the uploaded file for key, or nil when none was sent.
func FormFile(r *http.Request, key string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[key]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
