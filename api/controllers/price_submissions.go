package controllers

import (
	"net/http"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/responses"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/validators"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/pricesubmissions"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
)

// SubmissionCreate accepts product_id, location_id, new_price and either
// evidence_url or an evidence_image upload.
func SubmissionCreate(svc pricesubmissions.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("price submission"))
			return
		}
		claims, err := requireClaims(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ParseMultipart(w, r, maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input pricesubmissions.CreateInput
		if input.ProductID, err = validators.FormID(r, "product_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.LocationID, err = validators.FormID(r, "location_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.NewPrice, err = validators.FormDecimal(r, "new_price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.EvidenceURL = validators.FormString(r, "evidence_url")
		if header := validators.FormFile(r, "evidence_image"); header != nil {
			file, err := header.Open()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable evidence_image"))
				return
			}
			defer file.Close()
			input.EvidenceName = header.Filename
			input.Evidence = file
		}

		created, err := svc.Create(r.Context(), claims, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func SubmissionsPending(svc pricesubmissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("price submission"))
			return
		}
		claims, err := requireClaims(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationID, err := validators.URLParamID(r, "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListPending(r.Context(), claims, locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func SubmissionApprove(svc pricesubmissions.Service, logg *logger.Logger) http.HandlerFunc {
	return submissionDecision(svc, logg, true)
}

func SubmissionReject(svc pricesubmissions.Service, logg *logger.Logger) http.HandlerFunc {
	return submissionDecision(svc, logg, false)
}

func submissionDecision(svc pricesubmissions.Service, logg *logger.Logger, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("price submission"))
			return
		}
		claims, err := requireClaims(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		submissionID, err := validators.URLParamID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message := "Price submission approved"
		if approve {
			err = svc.Approve(r.Context(), claims, submissionID)
		} else {
			err = svc.Reject(r.Context(), claims, submissionID)
			message = "Price submission rejected"
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, message)
	}
}
