// Package pricesubmissions lets customers propose price corrections that the
// owner of the location approves or rejects.
package pricesubmissions

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/prices"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/uploads"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateInput is the parsed multipart submission form. When Evidence is set
// the URL is ignored.
type CreateInput struct {
	ProductID    int64
	LocationID   int64
	NewPrice     decimal.Decimal
	EvidenceURL  string
	EvidenceName string
	Evidence     io.Reader
}

// NewSubmission is pushed to the location's owners.
type NewSubmission struct {
	Submission SubmissionView `json:"submission"`
	Message    string         `json:"message"`
}

// Decision is pushed to the submitting customer.
type Decision struct {
	SubmissionID int64  `json:"submission_id"`
	Message      string `json:"message"`
}

// PriceWriter applies approved prices.
type PriceWriter interface {
	ApplyInTx(ctx context.Context, tx *gorm.DB, productID, locationID int64, amount decimal.Decimal) (*prices.Change, error)
	AnnounceChange(ctx context.Context, change prices.Change) *prices.PriceView
}

// EvidenceStore saves uploaded evidence images.
type EvidenceStore interface {
	Save(ctx context.Context, kind uploads.Kind, originalName string, body io.Reader) (string, error)
	Discard(ctx context.Context, publicPath string) error
}

type Service interface {
	Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, input CreateInput) (*SubmissionView, error)
	ListPending(ctx context.Context, claims *pkgAuth.AccessTokenClaims, locationID int64) ([]PendingView, error)
	Approve(ctx context.Context, claims *pkgAuth.AccessTokenClaims, submissionID int64) error
	Reject(ctx context.Context, claims *pkgAuth.AccessTokenClaims, submissionID int64) error
}

type ServiceParams struct {
	DB       *db.Client
	Repo     Repository
	Prices   PriceWriter
	Evidence EvidenceStore
	Notifier realtime.Notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	db       *db.Client
	repo     Repository
	prices   PriceWriter
	evidence EvidenceStore
	notifier realtime.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "submission repository required")
	case params.Prices == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "price writer required")
	case params.Evidence == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "evidence store required")
	}
	svc := &service{
		db:       params.DB,
		repo:     params.Repo,
		prices:   params.Prices,
		evidence: params.Evidence,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      params.Now,
	}
	if svc.notifier == nil {
		svc.notifier = realtime.Nop{}
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, input CreateInput) (*SubmissionView, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	if claims.Role != enums.RoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Only customers can submit price updates")
	}
	if input.ProductID <= 0 || input.LocationID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id and location_id are required")
	}
	if !input.NewPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid price value")
	}
	exists, err := s.repo.PriceExists(ctx, input.ProductID, input.LocationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check price")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found in this location")
	}

	row := &models.PriceSubmission{
		CustomerID: claims.UserID,
		ProductID:  input.ProductID,
		LocationID: input.LocationID,
		NewPrice:   input.NewPrice.Round(2),
		Status:     string(enums.SubmissionStatusPending),
		CreatedAt:  s.now(),
	}
	if input.Evidence != nil {
		path, err := s.evidence.Save(ctx, uploads.KindEvidence, input.EvidenceName, input.Evidence)
		if err != nil {
			return nil, err
		}
		row.EvidenceImage = &path
	} else if url := strings.TrimSpace(input.EvidenceURL); url != "" {
		row.EvidenceURL = &url
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if row.EvidenceImage != nil {
			_ = s.evidence.Discard(ctx, *row.EvidenceImage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create submission")
	}
	view, err := s.repo.View(ctx, row.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
	}

	s.notifier.ToOwner(ctx, input.LocationID, realtime.EventNewPriceSubmission, NewSubmission{
		Submission: *view,
		Message:    fmt.Sprintf("New price submission for %s by %s", view.ProductName, view.CustomerName),
	})
	return view, nil
}

func (s *service) ListPending(ctx context.Context, claims *pkgAuth.AccessTokenClaims, locationID int64) ([]PendingView, error) {
	if err := s.authorizeOwner(ctx, claims, locationID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Pending(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending submissions")
	}
	if rows == nil {
		rows = []PendingView{}
	}
	return rows, nil
}

// Approve writes the proposed price and marks the submission approved in one
// transaction. Notifications go out after commit.
func (s *service) Approve(ctx context.Context, claims *pkgAuth.AccessTokenClaims, submissionID int64) error {
	submission, err := s.decidable(ctx, claims, submissionID)
	if err != nil {
		return err
	}

	var change *prices.Change
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		change, err = s.prices.ApplyInTx(ctx, tx, submission.ProductID, submission.LocationID, submission.NewPrice)
		if err != nil {
			return err
		}
		return s.decide(ctx, s.repo.WithTx(tx), submissionID, enums.SubmissionStatusApproved)
	})
	if err != nil {
		return err
	}

	s.notifier.ToUser(ctx, submission.CustomerID, realtime.EventPriceSubmissionApproved, Decision{
		SubmissionID: submissionID,
		Message:      fmt.Sprintf("Your price submission for product %d was approved.", submission.ProductID),
	})
	s.prices.AnnounceChange(ctx, *change)
	return nil
}

func (s *service) Reject(ctx context.Context, claims *pkgAuth.AccessTokenClaims, submissionID int64) error {
	submission, err := s.decidable(ctx, claims, submissionID)
	if err != nil {
		return err
	}
	if err := s.decide(ctx, s.repo, submissionID, enums.SubmissionStatusRejected); err != nil {
		return err
	}
	s.notifier.ToUser(ctx, submission.CustomerID, realtime.EventPriceSubmissionRejected, Decision{
		SubmissionID: submissionID,
		Message:      fmt.Sprintf("Your price submission for product %d was rejected.", submission.ProductID),
	})
	return nil
}

func (s *service) decidable(ctx context.Context, claims *pkgAuth.AccessTokenClaims, submissionID int64) (*models.PriceSubmission, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	submission, err := s.repo.Find(ctx, submissionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
	}
	if err := s.authorizeOwner(ctx, claims, submission.LocationID); err != nil {
		return nil, err
	}
	if enums.SubmissionStatus(submission.Status).IsTerminal() {
		return nil, alreadyDecided(submission.Status)
	}
	return submission, nil
}

func (s *service) decide(ctx context.Context, repo Repository, submissionID int64, status enums.SubmissionStatus) error {
	ok, err := repo.Decide(ctx, submissionID, status, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update submission")
	}
	if !ok {
		return alreadyDecided("")
	}
	return nil
}

// authorizeOwner checks the claim against the owners table, not only the
// location carried in the token.
func (s *service) authorizeOwner(ctx context.Context, claims *pkgAuth.AccessTokenClaims, locationID int64) error {
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	if claims.Role != enums.RoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	ok, err := s.repo.IsLocationOwner(ctx, claims.UserID, locationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check owner")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	return nil
}

func alreadyDecided(status string) error {
	err := pkgerrors.New(pkgerrors.CodeStateConflict, "Submission has already been reviewed")
	if status != "" {
		return err.WithDetails(map[string]any{"status": status})
	}
	return err
}
