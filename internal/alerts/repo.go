package alerts

import (
	"context"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/repo"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"gorm.io/gorm"
)

// AlertView is an alert joined with the names of the product and location it
// refers to.
type AlertView struct {
	ID           int64      `json:"alert_id"`
	UserID       int64      `json:"user_id"`
	UserType     string     `json:"user_type"`
	Message      string     `json:"message"`
	Type         string     `json:"alert_type"`
	ProductID    *int64     `json:"product_id"`
	LocationID   *int64     `json:"location_id"`
	ProductName  *string    `json:"product_name"`
	LocationName *string    `json:"location_name"`
	CreatedAt    time.Time  `json:"created_at"`
	ReadAt       *time.Time `json:"read_at"`
}

type expiringRow struct {
	UserID          int64
	ProductID       int64
	LocationID      int64
	ProductName     string
	SupermarketName string
	LocationName    string
	EndAt           time.Time
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) Create(ctx context.Context, alert *models.Alert) error {
	return r.DB(ctx).Create(alert).Error
}

// FavoritedBy returns the users who favorited exactly this product price point.
func (r *Repository) FavoritedBy(ctx context.Context, productID, priceID int64) ([]int64, error) {
	var ids []int64
	err := r.DB(ctx).Model(&models.Favorite{}).
		Where("product_id = ? AND price_id = ?", productID, priceID).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ExpiringFavorites lists (user, deal) pairs for deals ending in (now, until]
// whose user has not had a deal_expiration alert for the same product and
// location since dedupSince.
func (r *Repository) ExpiringFavorites(ctx context.Context, now, until, dedupSince time.Time) ([]expiringRow, error) {
	var rows []expiringRow
	err := r.DB(ctx).
		Table("deals AS d").
		Select(`f.user_id AS user_id, d.product_id AS product_id, d.location_id AS location_id,
			pr.name AS product_name, s.name AS supermarket_name, l.name AS location_name, d.end_at AS end_at`).
		Joins("JOIN prices AS p ON p.product_id = d.product_id AND p.location_id = d.location_id").
		Joins("JOIN favorites AS f ON f.price_id = p.id").
		Joins("JOIN products AS pr ON pr.id = d.product_id").
		Joins("JOIN supermarket_locations AS l ON l.id = d.location_id").
		Joins("JOIN supermarkets AS s ON s.id = l.supermarket_id").
		Where("d.end_at > ? AND d.end_at <= ?", now, until).
		Where(`NOT EXISTS (SELECT 1 FROM alerts AS a
			WHERE a.user_id = f.user_id AND a.user_type = ? AND a.type = ?
			AND a.product_id = d.product_id AND a.location_id = d.location_id
			AND a.created_at >= ?)`,
			string(enums.RoleCustomer), string(enums.AlertTypeDealExpiration), dedupSince).
		Order("d.end_at ASC, f.user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListForUser(ctx context.Context, userID int64, userType string) ([]AlertView, error) {
	var rows []AlertView
	err := r.DB(ctx).
		Table("alerts AS a").
		Select(`a.id AS id, a.user_id AS user_id, a.user_type AS user_type, a.message AS message,
			a.type AS type, a.product_id AS product_id, a.location_id AS location_id,
			pr.name AS product_name, l.name AS location_name, a.created_at AS created_at, a.read_at AS read_at`).
		Joins("LEFT JOIN products AS pr ON pr.id = a.product_id").
		Joins("LEFT JOIN supermarket_locations AS l ON l.id = a.location_id").
		Where("a.user_id = ? AND a.user_type = ?", userID, userType).
		Order("a.created_at DESC, a.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Find(ctx context.Context, id int64) (*models.Alert, error) {
	var alert models.Alert
	if err := r.DB(ctx).Where("id = ?", id).Take(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// MarkRead stamps read_at once; an already-read alert is left untouched.
func (r *Repository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	return r.DB(ctx).Model(&models.Alert{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Alert{}).Error
}
