// Package prices owns per-location price rows and the fan-out that follows
// every price change.
package prices

import (
	"context"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/alerts"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type CreatePriceRequest struct {
	ProductID  int64           `json:"product_id" validate:"required,gt=0"`
	Price      decimal.Decimal `json:"price" validate:"price"`
	LocationID int64           `json:"location_id" validate:"required,gt=0"`
}

type UpdatePriceRequest struct {
	Price      decimal.Decimal `json:"price" validate:"price"`
	LocationID int64           `json:"locationId" validate:"required,gt=0"`
}

// Change is the before/after of one price row update.
type Change struct {
	ProductID  int64
	LocationID int64
	PriceID    int64
	OldPrice   decimal.Decimal
	NewPrice   decimal.Decimal
}

// Decreased reports whether the update lowered the price.
func (c Change) Decreased() bool {
	return c.NewPrice.LessThan(c.OldPrice)
}

// PriceDropView is pushed as priceDropped alongside priceUpdated.
type PriceDropView struct {
	PriceView
	OldPrice       decimal.Decimal `json:"old_price"`
	PriceDrop      decimal.Decimal `json:"price_drop"`
	DropPercentage string          `json:"drop_percentage"`
}

// PriceDropNotifier is the alerting side of a price decrease.
type PriceDropNotifier interface {
	NotifyPriceDrop(ctx context.Context, drop alerts.PriceDrop) (int, error)
}

type Service interface {
	List(ctx context.Context) ([]PriceView, error)
	ByProduct(ctx context.Context, productID int64) ([]PriceView, error)
	Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req CreatePriceRequest) (*models.Price, error)
	UpdatePrice(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID int64, req UpdatePriceRequest) (*PriceView, error)
	// ApplyInTx updates the row inside the caller's transaction. The caller
	// must invoke AnnounceChange once the transaction commits.
	ApplyInTx(ctx context.Context, tx *gorm.DB, productID, locationID int64, amount decimal.Decimal) (*Change, error)
	AnnounceChange(ctx context.Context, change Change) *PriceView
}

type ServiceParams struct {
	DB       *db.Client
	Repo     *Repository
	Alerts   PriceDropNotifier
	Notifier realtime.Notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	db       *db.Client
	repo     *Repository
	alerts   PriceDropNotifier
	notifier realtime.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "prices repository required")
	}
	if params.Alerts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerts service required")
	}
	svc := &service{
		db:       params.DB,
		repo:     params.Repo,
		alerts:   params.Alerts,
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

func (s *service) List(ctx context.Context) ([]PriceView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list prices")
	}
	return nonNil(rows), nil
}

func (s *service) ByProduct(ctx context.Context, productID int64) ([]PriceView, error) {
	rows, err := s.repo.ByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list product prices")
	}
	return nonNil(rows), nil
}

func (s *service) Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req CreatePriceRequest) (*models.Price, error) {
	if !claims.OwnsLocation(req.LocationID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized for this location")
	}
	if err := validateAmount(req.Price); err != nil {
		return nil, err
	}
	exists, err := s.repo.ProductExists(ctx, req.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}

	if _, err := s.repo.Find(ctx, req.ProductID, req.LocationID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Product already exists in the supermarket")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check price")
	}

	row := &models.Price{
		ProductID:   req.ProductID,
		LocationID:  req.LocationID,
		Price:       req.Price.Round(2),
		LastUpdated: s.now(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "idx_prices_product_location") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Product already exists in the supermarket")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create price")
	}
	return row, nil
}

func (s *service) UpdatePrice(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID int64, req UpdatePriceRequest) (*PriceView, error) {
	if !claims.OwnsLocation(req.LocationID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized for this location")
	}
	if err := validateAmount(req.Price); err != nil {
		return nil, err
	}

	var change *Change
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		change, err = s.ApplyInTx(ctx, tx, productID, req.LocationID, req.Price)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.AnnounceChange(ctx, *change), nil
}

func (s *service) ApplyInTx(ctx context.Context, tx *gorm.DB, productID, locationID int64, amount decimal.Decimal) (*Change, error) {
	repo := s.repo.WithTx(tx)
	row, err := repo.Find(ctx, productID, locationID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Price entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load price")
	}
	amount = amount.Round(2)
	if err := repo.SetPrice(ctx, row.ID, amount, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update price")
	}
	return &Change{
		ProductID:  productID,
		LocationID: locationID,
		PriceID:    row.ID,
		OldPrice:   row.Price,
		NewPrice:   amount,
	}, nil
}

// AnnounceChange broadcasts priceUpdated for every change and, on a decrease,
// writes price-drop alerts and broadcasts priceDropped. Failures are logged.
func (s *service) AnnounceChange(ctx context.Context, change Change) *PriceView {
	view, err := s.repo.View(ctx, change.ProductID, change.LocationID)
	if err != nil {
		s.warn(ctx, "price.announce.lookup_failed", err)
		return nil
	}
	s.notifier.Broadcast(ctx, realtime.EventPriceUpdated, view)

	if !change.Decreased() || !change.OldPrice.IsPositive() {
		return view
	}

	_, err = s.alerts.NotifyPriceDrop(ctx, alerts.PriceDrop{
		ProductID:       change.ProductID,
		LocationID:      change.LocationID,
		PriceID:         change.PriceID,
		ProductName:     view.ProductName,
		SupermarketName: view.SupermarketName,
		LocationName:    view.LocationName,
		OldPrice:        change.OldPrice,
		NewPrice:        change.NewPrice,
	})
	if err != nil {
		s.warn(ctx, "price.announce.alerts_failed", err)
	}

	drop := change.OldPrice.Sub(change.NewPrice)
	s.notifier.Broadcast(ctx, realtime.EventPriceDropped, PriceDropView{
		PriceView:      *view,
		OldPrice:       change.OldPrice,
		PriceDrop:      drop,
		DropPercentage: drop.Div(change.OldPrice).Mul(hundred).StringFixed(1),
	})
	return view
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid price value")
	}
	return nil
}

func nonNil(rows []PriceView) []PriceView {
	if rows == nil {
		return []PriceView{}
	}
	return rows
}
