package categories

import (
	"context"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/repo"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Find(ctx context.Context, id int64) (*models.Category, error) {
	var row models.Category
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Products returns products ordered by category then name. A non-empty
// country restricts the result to that country's catalog; categoryID 0 means
// every category.
func (r *Repository) Products(ctx context.Context, categoryID int64, country string) ([]models.Product, error) {
	query := r.DB(ctx).Model(&models.Product{})
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if country != "" {
		query = query.Where("country = ?", country)
	}
	var rows []models.Product
	if err := query.Order("category_id ASC, name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
