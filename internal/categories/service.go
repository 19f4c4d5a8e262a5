// Package categories serves category listings and category-scoped product
// browsing.
package categories

import (
	"context"
	"errors"
	"strings"

	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"gorm.io/gorm"
)

type CategoryDTO struct {
	ID   int64  `json:"category_id"`
	Name string `json:"category_name"`
}

type ProductSummary struct {
	ID        int64  `json:"product_id"`
	Name      string `json:"product_name"`
	ImagePath string `json:"image_path"`
}

type ExploreCategory struct {
	ID       int64            `json:"category_id"`
	Name     string           `json:"category_name"`
	Products []ProductSummary `json:"products"`
}

type CategoryProducts struct {
	CategoryName string           `json:"category_name"`
	Products     []ProductSummary `json:"products"`
}

type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Explore(ctx context.Context) ([]ExploreCategory, error)
	ProductsByCategory(ctx context.Context, claims *pkgAuth.AccessTokenClaims, categoryID int64) (*CategoryProducts, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryDTO{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

// Explore groups every product under its category in two queries.
func (s *service) Explore(ctx context.Context) ([]ExploreCategory, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	products, err := s.repo.Products(ctx, 0, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	byCategory := make(map[int64][]ProductSummary, len(cats))
	for _, p := range products {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], summary(p))
	}

	out := make([]ExploreCategory, 0, len(cats))
	for _, c := range cats {
		items := byCategory[c.ID]
		if items == nil {
			items = []ProductSummary{}
		}
		out = append(out, ExploreCategory{ID: c.ID, Name: c.Name, Products: items})
	}
	return out, nil
}

func (s *service) ProductsByCategory(ctx context.Context, claims *pkgAuth.AccessTokenClaims, categoryID int64) (*CategoryProducts, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	country := strings.TrimSpace(claims.Country)
	if country == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Country not found in token")
	}

	category, err := s.repo.Find(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Category not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}

	products, err := s.repo.Products(ctx, categoryID, country)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := &CategoryProducts{CategoryName: category.Name, Products: make([]ProductSummary, 0, len(products))}
	for _, p := range products {
		out.Products = append(out.Products, summary(p))
	}
	return out, nil
}

func summary(p models.Product) ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, ImagePath: p.ImagePath}
}
