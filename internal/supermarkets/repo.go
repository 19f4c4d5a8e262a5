package supermarkets

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

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) ListSupermarkets(ctx context.Context) ([]models.Supermarket, error) {
	var rows []models.Supermarket
	if err := r.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CreateSupermarket(ctx context.Context, row *models.Supermarket) error {
	return r.DB(ctx).Create(row).Error
}

func (r *Repository) SupermarketExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Supermarket{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListLocations returns every location, or only supermarketID's when it is
// positive.
func (r *Repository) ListLocations(ctx context.Context, supermarketID int64) ([]models.Location, error) {
	query := r.DB(ctx).Model(&models.Location{})
	if supermarketID > 0 {
		query = query.Where("supermarket_id = ?", supermarketID)
	}
	var rows []models.Location
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindLocation(ctx context.Context, id int64) (*models.Location, error) {
	var row models.Location
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateLocation(ctx context.Context, row *models.Location) error {
	return r.DB(ctx).Create(row).Error
}

// UpdateLocation reports whether a row matched.
func (r *Repository) UpdateLocation(ctx context.Context, id int64, supermarketID int64, name string) (bool, error) {
	result := r.DB(ctx).Model(&models.Location{}).Where("id = ?", id).
		Updates(map[string]any{"supermarket_id": supermarketID, "name": name})
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) DeleteLocation(ctx context.Context, id int64) (bool, error) {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.Location{})
	return result.RowsAffected > 0, result.Error
}
