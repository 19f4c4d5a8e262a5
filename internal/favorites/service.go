// Package favorites tracks which price points a customer follows for price
// drop and deal expiration alerts.
package favorites

import (
	"context"
	"time"

	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
)

const duplicateMessage = "This price is already in favorites"

type FavoriteDTO struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	PriceID   int64     `json:"price_id"`
	CreatedAt time.Time `json:"created_at"`
}

type AddRequest struct {
	UserID    int64 `json:"userId" validate:"required,gt=0"`
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	PriceID   int64 `json:"priceId" validate:"required,gt=0"`
}

type Service interface {
	List(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID int64) ([]FavoriteDTO, error)
	Add(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req AddRequest) (*FavoriteDTO, error)
	Remove(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID, productID, priceID int64) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "favorites repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID int64) ([]FavoriteDTO, error) {
	if err := requireSelf(claims, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favorites")
	}
	out := make([]FavoriteDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Add(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req AddRequest) (*FavoriteDTO, error) {
	if err := requireSelf(claims, req.UserID); err != nil {
		return nil, err
	}
	ok, err := s.repo.PricePointExists(ctx, req.ProductID, req.PriceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check price")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Price not found for this product")
	}
	dup, err := s.repo.Exists(ctx, req.UserID, req.ProductID, req.PriceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check favorite")
	}
	if dup {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateMessage)
	}

	row := models.Favorite{UserID: req.UserID, ProductID: req.ProductID, PriceID: req.PriceID}
	if err := s.repo.Create(ctx, &row); err != nil {
		if db.IsUniqueViolation(err, "idx_favorites_user_product_price") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add favorite")
	}
	dto := toDTO(row)
	return &dto, nil
}

func (s *service) Remove(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID, productID, priceID int64) error {
	if err := requireSelf(claims, userID); err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, userID, productID, priceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove favorite")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Favorite not found")
	}
	return nil
}

// Favorites key alerts addressed to customers, so only a customer may manage
// their own list.
func requireSelf(claims *pkgAuth.AccessTokenClaims, userID int64) error {
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if claims.Role != enums.RoleCustomer || claims.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to manage these favorites")
	}
	return nil
}

func toDTO(row models.Favorite) FavoriteDTO {
	return FavoriteDTO{ID: row.ID, UserID: row.UserID, ProductID: row.ProductID, PriceID: row.PriceID, CreatedAt: row.CreatedAt}
}
