// Package deals manages time-bounded percentage discounts and keeps the
// on_deal flag of price rows in step with them.
package deals

import (
	"context"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const duplicateDealMessage = "A deal already exists for this product at this location"

// ExpiryScanner raises alerts for deals that end soon.
type ExpiryScanner interface {
	ScanExpiringDeals(ctx context.Context, now time.Time) (int, error)
}

type Service interface {
	ListActive(ctx context.Context) ([]DealView, error)
	CreateDeal(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req CreateDealRequest) (*DealView, error)
	UpdateDeal(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID int64, req UpdateDealRequest) (*DealView, error)
	RemoveDeal(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID, locationID int64) error
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	SweepActivate(ctx context.Context, now time.Time) (int64, error)
}

type ServiceParams struct {
	DB       *db.Client
	Repo     *Repository
	Expiry   ExpiryScanner
	Notifier realtime.Notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	db       *db.Client
	repo     *Repository
	expiry   ExpiryScanner
	notifier realtime.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "deals repository required")
	}
	svc := &service{
		db:       params.DB,
		repo:     params.Repo,
		expiry:   params.Expiry,
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

func (s *service) ListActive(ctx context.Context) ([]DealView, error) {
	rows, err := s.repo.Active(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deals")
	}
	out := make([]DealView, 0, len(rows))
	for _, row := range rows {
		out = append(out, viewFromRow(row))
	}
	return out, nil
}

func (s *service) CreateDeal(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req CreateDealRequest) (*DealView, error) {
	if !claims.OwnsLocation(req.LocationID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized for this location")
	}
	start, end := req.StartDate.UTC(), req.EndDate.UTC()
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields")
	}
	if err := validateTerms(req.Percentage, start, end); err != nil {
		return nil, err
	}

	exists, err := s.repo.PriceExists(ctx, req.ProductID, req.LocationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check price")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found in this location")
	}
	if _, err := s.repo.Find(ctx, req.ProductID, req.LocationID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateDealMessage)
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check deal")
	}

	now := s.now()
	deal := &models.Deal{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Percentage: req.Percentage,
		StartAt:    start,
		EndAt:      end,
		CreatedAt:  now,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, deal); err != nil {
			if db.IsUniqueViolation(err, "idx_deals_product_location") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateDealMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create deal")
		}
		if IsActive(start, end, now) {
			if err := repo.SetOnDeal(ctx, req.ProductID, req.LocationID, true); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flag price on deal")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := s.announce(ctx, realtime.EventNewDeal, req.ProductID, req.LocationID)
	if s.expiry != nil {
		if _, err := s.expiry.ScanExpiringDeals(ctx, now); err != nil {
			s.warn(ctx, "deal.expiry_scan_failed", err)
		}
	}
	if view == nil {
		view = &DealView{DealID: deal.ID, ProductID: deal.ProductID, LocationID: deal.LocationID,
			Percentage: deal.Percentage, StartDate: start, EndDate: end}
	}
	return view, nil
}

// UpdateDeal overwrites percentage and end date; the start date is kept.
func (s *service) UpdateDeal(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID int64, req UpdateDealRequest) (*DealView, error) {
	if !claims.OwnsLocation(req.LocationID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized for this location")
	}
	if req.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "All fields are required")
	}
	deal, err := s.repo.Find(ctx, productID, req.LocationID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load deal")
	}
	end := req.EndDate.UTC()
	if err := validateTerms(req.Percentage, deal.StartAt, end); err != nil {
		return nil, err
	}

	active := IsActive(deal.StartAt, end, s.now())
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateTerms(ctx, deal.ID, req.Percentage, end); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update deal")
		}
		if err := repo.SetOnDeal(ctx, productID, req.LocationID, active); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update price deal flag")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.announce(ctx, realtime.EventDealUpdated, productID, req.LocationID), nil
}

func (s *service) RemoveDeal(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID, locationID int64) error {
	if !claims.OwnsLocation(locationID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized for this location")
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		deal, err := repo.Find(ctx, productID, locationID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Deal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load deal")
		}
		if err := repo.Delete(ctx, deal.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete deal")
		}
		if err := repo.SetOnDeal(ctx, productID, locationID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear price deal flag")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Broadcast(ctx, realtime.EventDealRemoved, Removed{ProductID: productID, LocationID: locationID})
	return nil
}

// SweepExpired clears on_deal and deletes every deal whose end has passed.
// A failing deal is skipped and reported; the rest are still swept.
func (s *service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.EndedBefore(ctx, now.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list expired deals")
	}

	var errs error
	swept := 0
	for _, deal := range expired {
		deal := deal
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.SetOnDeal(ctx, deal.ProductID, deal.LocationID, false); err != nil {
				return err
			}
			return repo.Delete(ctx, deal.ID)
		})
		if err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire deal").
				WithDetails(map[string]any{"deal_id": deal.ID}))
			continue
		}
		swept++
	}
	return swept, errs
}

func (s *service) SweepActivate(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.ActivateAt(ctx, now.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate deals")
	}
	return n, nil
}

func (s *service) announce(ctx context.Context, event realtime.Event, productID, locationID int64) *DealView {
	row, err := s.repo.View(ctx, productID, locationID)
	if err != nil {
		s.warn(ctx, "deal.announce.lookup_failed", err)
		return nil
	}
	view := viewFromRow(*row)
	s.notifier.Broadcast(ctx, event, view)
	return &view
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func validateTerms(pct decimal.Decimal, start, end time.Time) error {
	if !pct.IsPositive() || pct.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Discount percentage must be greater than 0 and at most 100")
	}
	if start.After(end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Deal start date must not be after its end date")
	}
	return nil
}
