package product

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/deals"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/favorites"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/prices"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/uploads"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"gorm.io/gorm"
)

// Service exposes product catalog reads and owner-side product management.
type Service interface {
	List(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, productID, locationID int64) (*ProductAtLocation, error)
	Details(ctx context.Context, productID int64) (*ProductDetails, error)
	InStock(ctx context.Context, locationID int64) ([]InStockItem, error)
	Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, input CreateInput) (*CreatedProduct, error)
	Delete(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID int64) error
}

// Uploader stores product images.
type Uploader interface {
	Save(ctx context.Context, kind uploads.Kind, originalName string, body io.Reader) (string, error)
	Discard(ctx context.Context, publicPath string) error
}

type ServiceParams struct {
	DB        *db.Client
	Repo      Repository
	Prices    prices.Service
	Favorites *favorites.Repository
	Deals     *deals.Repository
	Uploads   Uploader
	Notifier  realtime.Notifier
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	db        *db.Client
	repo      Repository
	prices    prices.Service
	favorites *favorites.Repository
	deals     *deals.Repository
	uploads   Uploader
	notifier  realtime.Notifier
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds a product service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	case params.Prices == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "prices service required")
	case params.Favorites == nil || params.Deals == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "favorites and deals repositories required")
	case params.Uploads == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upload service required")
	}
	svc := &service{
		db:        params.DB,
		repo:      params.Repo,
		prices:    params.Prices,
		favorites: params.Favorites,
		deals:     params.Deals,
		uploads:   params.Uploads,
		notifier:  params.Notifier,
		logg:      params.Logger,
		now:       params.Now,
	}
	if svc.notifier == nil {
		svc.notifier = realtime.Nop{}
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	return svc, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// Get returns the product priced at locationID. The deal block is present only
// while the deal is running.
func (s *service) Get(ctx context.Context, productID, locationID int64) (*ProductAtLocation, error) {
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "load product")
	}
	price, err := s.repo.PriceAt(ctx, productID, locationID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "load price")
	}

	out := &ProductAtLocation{
		ProductDTO: toDTO(*product),
		LocationID: locationID,
		Price:      price.Price,
		OnDeal:     price.OnDeal,
	}
	deal, err := s.repo.DealAt(ctx, productID, locationID)
	switch {
	case err == nil:
		if deals.IsActive(deal.StartAt, deal.EndAt, s.now()) {
			out.Deal = &DealInfo{
				DiscountPercentage: deal.Percentage,
				DealPrice:          deals.DealPrice(price.Price, deal.Percentage),
				DealEndDate:        deal.EndAt,
			}
		}
	case !db.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load deal")
	}
	return out, nil
}

func (s *service) Details(ctx context.Context, productID int64) (*ProductDetails, error) {
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "load product")
	}
	rows, err := s.prices.ByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductDetails{ProductDTO: toDTO(*product), Prices: rows}, nil
}

func (s *service) InStock(ctx context.Context, locationID int64) ([]InStockItem, error) {
	rows, err := s.repo.InStock(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock")
	}
	if rows == nil {
		rows = []InStockItem{}
	}
	return rows, nil
}

// Create stores the image, then inserts the product and its price at the
// owner's location in one transaction. The image is removed if the
// transaction fails.
func (s *service) Create(ctx context.Context, claims *pkgAuth.AccessTokenClaims, input CreateInput) (*CreatedProduct, error) {
	locationID, err := ownerLocation(claims)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || input.CategoryID <= 0 || input.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product name, price, image, and category are required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid price value")
	}

	imagePath, err := s.uploads.Save(ctx, uploads.KindProductImage, input.ImageName, input.Image)
	if err != nil {
		return nil, err
	}

	var created CreatedProduct
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		country, err := repo.LocationCountry(ctx, locationID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "Supermarket location not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load location")
		}
		categoryName, err := repo.CategoryName(ctx, input.CategoryID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "Invalid category")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}

		now := s.now()
		product := &models.Product{
			Name:       name,
			ImagePath:  imagePath,
			CategoryID: input.CategoryID,
			Country:    country,
			CreatedAt:  now,
		}
		if err := repo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		price := &models.Price{
			ProductID:   product.ID,
			LocationID:  locationID,
			Price:       input.Price.Round(2),
			LastUpdated: now,
		}
		if err := repo.CreatePrice(ctx, price); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create price")
		}
		created = CreatedProduct{
			ProductDTO:   toDTO(*product),
			LocationID:   locationID,
			Price:        price.Price,
			CategoryName: categoryName,
		}
		return nil
	})
	if err != nil {
		if discardErr := s.uploads.Discard(ctx, imagePath); discardErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "path", imagePath), "product.image.discard_failed")
		}
		return nil, err
	}
	return &created, nil
}

// Delete removes the product from the owner's location only: its favorites,
// deal and price row go in one transaction. The catalog entry stays.
func (s *service) Delete(ctx context.Context, claims *pkgAuth.AccessTokenClaims, productID int64) error {
	locationID, err := ownerLocation(claims)
	if err != nil {
		return err
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		price, err := repo.PriceAt(ctx, productID, locationID)
		if err != nil {
			return notFoundOr(err, "Product not found in this location", "load price")
		}
		if err := s.favorites.WithTx(tx).DeleteForPrice(ctx, price.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete favorites")
		}
		if err := s.deals.WithTx(tx).DeleteForPrice(ctx, productID, locationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete deals")
		}
		if err := repo.DeletePrice(ctx, price.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete price")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Broadcast(ctx, realtime.EventProductDeleted, Deleted{ProductID: productID, LocationID: locationID})
	return nil
}

func ownerLocation(claims *pkgAuth.AccessTokenClaims) (int64, error) {
	if claims == nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "Access token is required")
	}
	if claims.Role != enums.RoleOwner || claims.LocationID == nil {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "Owner not found")
	}
	return *claims.LocationID, nil
}

func notFoundOr(err error, notFound, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
