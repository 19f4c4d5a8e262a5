// Package reviews stores customer ratings of a product at a location.
package reviews

import (
	"context"
	"strings"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
)

type CreateRequest struct {
	ProductID  int64  `json:"product_id" validate:"required,gt=0"`
	LocationID int64  `json:"location_id" validate:"required,gt=0"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

// Deleted is pushed as reviewDeleted.
type Deleted struct {
	ReviewID int64 `json:"review_id"`
}

type Service interface {
	List(ctx context.Context, productID, locationID int64) ([]ReviewView, error)
	Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req CreateRequest) (*ReviewView, error)
	Delete(ctx context.Context, claims *pkgAuth.AccessTokenClaims, reviewID int64) error
}

type service struct {
	repo     *Repository
	notifier realtime.Notifier
	now      func() time.Time
}

func NewService(repo *Repository, notifier realtime.Notifier) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reviews repository required")
	}
	if notifier == nil {
		notifier = realtime.Nop{}
	}
	return &service{repo: repo, notifier: notifier, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) List(ctx context.Context, productID, locationID int64) ([]ReviewView, error) {
	rows, err := s.repo.ListFor(ctx, productID, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	if rows == nil {
		rows = []ReviewView{}
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req CreateRequest) (*ReviewView, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Access token required")
	}
	if claims.Role != enums.RoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Only customers can post reviews")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Rating must be between 1 and 5")
	}

	row := &models.Review{
		CustomerID: claims.UserID,
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	view, err := s.repo.View(ctx, row.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	s.notifier.Broadcast(ctx, realtime.EventNewReview, view)
	return view, nil
}

// Delete removes the caller's own review. Any other review, including a
// missing one, is reported as not authorized.
func (s *service) Delete(ctx context.Context, claims *pkgAuth.AccessTokenClaims, reviewID int64) error {
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Access token required")
	}
	row, err := s.repo.Find(ctx, reviewID)
	if err != nil && !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	if row == nil || claims.Role != enums.RoleCustomer || row.CustomerID != claims.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to delete")
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	s.notifier.Broadcast(ctx, realtime.EventReviewDeleted, Deleted{ReviewID: reviewID})
	return nil
}
