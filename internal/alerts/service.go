// Package alerts persists user alerts for price drops and expiring deals and
// pushes them to the recipient's realtime channel.
package alerts

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	DefaultExpiryWindow = 24 * time.Hour
	DefaultDedupWindow  = time.Hour
)

// PriceDrop describes a strict decrease of one price row.
type PriceDrop struct {
	ProductID       int64
	LocationID      int64
	PriceID         int64
	ProductName     string
	SupermarketName string
	LocationName    string
	OldPrice        decimal.Decimal
	NewPrice        decimal.Decimal
}

type Service interface {
	NotifyPriceDrop(ctx context.Context, drop PriceDrop) (int, error)
	ScanExpiringDeals(ctx context.Context, now time.Time) (int, error)
	List(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID int64, userType enums.Role) ([]AlertView, error)
	MarkRead(ctx context.Context, claims *pkgAuth.AccessTokenClaims, alertID int64) error
	Delete(ctx context.Context, claims *pkgAuth.AccessTokenClaims, alertID int64) error
}

type ServiceParams struct {
	Repo         *Repository
	Notifier     realtime.Notifier
	Logger       *logger.Logger
	ExpiryWindow time.Duration
	DedupWindow  time.Duration
	Now          func() time.Time
}

type service struct {
	repo         *Repository
	notifier     realtime.Notifier
	logg         *logger.Logger
	expiryWindow time.Duration
	dedupWindow  time.Duration
	now          func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerts repository required")
	}
	svc := &service{
		repo:         params.Repo,
		notifier:     params.Notifier,
		logg:         params.Logger,
		expiryWindow: params.ExpiryWindow,
		dedupWindow:  params.DedupWindow,
		now:          params.Now,
	}
	if svc.notifier == nil {
		svc.notifier = realtime.Nop{}
	}
	if svc.expiryWindow <= 0 {
		svc.expiryWindow = DefaultExpiryWindow
	}
	if svc.dedupWindow <= 0 {
		svc.dedupWindow = DefaultDedupWindow
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	return svc, nil
}

// NotifyPriceDrop alerts every customer who favorited the dropped price point.
// It returns the number of alerts written and is a no-op unless the price
// strictly decreased.
func (s *service) NotifyPriceDrop(ctx context.Context, drop PriceDrop) (int, error) {
	if !drop.NewPrice.LessThan(drop.OldPrice) || !drop.OldPrice.IsPositive() {
		return 0, nil
	}
	users, err := s.repo.FavoritedBy(ctx, drop.ProductID, drop.PriceID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load favorites for price drop")
	}

	message := PriceDropMessage(drop)
	productID, locationID := drop.ProductID, drop.LocationID
	sent := 0
	for _, userID := range users {
		alert := &models.Alert{
			UserID:     userID,
			UserType:   string(enums.RoleCustomer),
			Message:    message,
			Type:       string(enums.AlertTypePriceChange),
			ProductID:  &productID,
			LocationID: &locationID,
			CreatedAt:  s.now(),
		}
		if err := s.repo.Create(ctx, alert); err != nil {
			return sent, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create price alert")
		}
		s.notifier.ToUser(ctx, userID, realtime.EventNewAlert, viewOf(alert))
		sent++
	}
	return sent, nil
}

// ScanExpiringDeals alerts favoriting customers of deals ending within the
// expiry window, skipping pairs already alerted within the dedup window.
func (s *service) ScanExpiringDeals(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	rows, err := s.repo.ExpiringFavorites(ctx, now, now.Add(s.expiryWindow), now.Add(-s.dedupWindow))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scan expiring deals")
	}

	sent := 0
	for _, row := range rows {
		productID, locationID := row.ProductID, row.LocationID
		alert := &models.Alert{
			UserID:     row.UserID,
			UserType:   string(enums.RoleCustomer),
			Message:    ExpiringDealMessage(row.ProductName, row.SupermarketName, row.LocationName, row.EndAt.Sub(now)),
			Type:       string(enums.AlertTypeDealExpiration),
			ProductID:  &productID,
			LocationID: &locationID,
			CreatedAt:  now,
		}
		if err := s.repo.Create(ctx, alert); err != nil {
			return sent, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create expiration alert")
		}
		s.notifier.ToUser(ctx, row.UserID, realtime.EventNewAlert, viewOf(alert))
		sent++
	}
	if sent > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"alerts": sent}), "deal expiration alerts sent")
	}
	return sent, nil
}

func (s *service) List(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID int64, userType enums.Role) ([]AlertView, error) {
	if err := authorize(claims, userID, string(userType)); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForUser(ctx, userID, string(userType))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list alerts")
	}
	if rows == nil {
		rows = []AlertView{}
	}
	return rows, nil
}

func (s *service) MarkRead(ctx context.Context, claims *pkgAuth.AccessTokenClaims, alertID int64) error {
	if _, err := s.owned(ctx, claims, alertID); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, alertID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark alert read")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, claims *pkgAuth.AccessTokenClaims, alertID int64) error {
	if _, err := s.owned(ctx, claims, alertID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, alertID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete alert")
	}
	return nil
}

func (s *service) owned(ctx context.Context, claims *pkgAuth.AccessTokenClaims, alertID int64) (*models.Alert, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	alert, err := s.repo.Find(ctx, alertID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Alert not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load alert")
	}
	if err := authorize(claims, alert.UserID, alert.UserType); err != nil {
		return nil, err
	}
	return alert, nil
}

func authorize(claims *pkgAuth.AccessTokenClaims, userID int64, userType string) error {
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if claims.UserID != userID || string(claims.Role) != userType {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to access these alerts")
	}
	return nil
}

// PriceDropMessage renders prices with two decimals and the saving with one.
func PriceDropMessage(drop PriceDrop) string {
	pct := drop.OldPrice.Sub(drop.NewPrice).Div(drop.OldPrice).Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%s price dropped from %s to %s (%s%% savings) at %s %s",
		drop.ProductName,
		drop.OldPrice.StringFixed(2),
		drop.NewPrice.StringFixed(2),
		pct.StringFixed(1),
		drop.SupermarketName,
		drop.LocationName,
	)
}

func ExpiringDealMessage(product, supermarket, location string, remaining time.Duration) string {
	hours := int64(math.Round(remaining.Hours()))
	return fmt.Sprintf("Hurry! The deal on %s at %s, %s expires in %d hours!", product, supermarket, location, hours)
}

func viewOf(alert *models.Alert) AlertView {
	return AlertView{
		ID:         alert.ID,
		UserID:     alert.UserID,
		UserType:   alert.UserType,
		Message:    alert.Message,
		Type:       alert.Type,
		ProductID:  alert.ProductID,
		LocationID: alert.LocationID,
		CreatedAt:  alert.CreatedAt,
		ReadAt:     alert.ReadAt,
	}
}
