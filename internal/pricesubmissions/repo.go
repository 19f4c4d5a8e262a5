package pricesubmissions

import (
	"context"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubmissionView is a submission with its product and customer names.
type SubmissionView struct {
	ID            int64           `json:"submission_id"`
	CustomerID    int64           `json:"customer_id"`
	ProductID     int64           `json:"product_id"`
	LocationID    int64           `json:"location_id"`
	NewPrice      decimal.Decimal `json:"new_price"`
	EvidenceURL   *string         `json:"evidence_url"`
	EvidenceImage *string         `json:"evidence_image"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ApprovedAt    *time.Time      `json:"approved_at"`
	RejectedAt    *time.Time      `json:"rejected_at"`
	CustomerName  string          `json:"customer_name"`
	ProductName   string          `json:"product_name"`
}

// PendingView adds the price currently on the shelf.
type PendingView struct {
	SubmissionView
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// Repository persists price submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.PriceSubmission) error
	Find(ctx context.Context, id int64) (*models.PriceSubmission, error)
	View(ctx context.Context, id int64) (*SubmissionView, error)
	Pending(ctx context.Context, locationID int64) ([]PendingView, error)
	PriceExists(ctx context.Context, productID, locationID int64) (bool, error)
	IsLocationOwner(ctx context.Context, ownerID, locationID int64) (bool, error)
	// Decide moves a pending submission to status and reports whether it was
	// still pending.
	Decide(ctx context.Context, id int64, status enums.SubmissionStatus, at time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

const submissionColumns = `ps.id AS id, ps.customer_id AS customer_id, ps.product_id AS product_id,
	ps.location_id AS location_id, ps.new_price AS new_price, ps.evidence_url AS evidence_url,
	ps.evidence_image AS evidence_image, ps.status AS status, ps.created_at AS created_at,
	ps.approved_at AS approved_at, ps.rejected_at AS rejected_at,
	c.username AS customer_name, p.name AS product_name`

func (r *repositoryImpl) joined(ctx context.Context, extra string) *gorm.DB {
	columns := submissionColumns
	if extra != "" {
		columns += ", " + extra
	}
	return r.db.WithContext(ctx).
		Table("price_submissions AS ps").
		Select(columns).
		Joins("JOIN customers AS c ON c.id = ps.customer_id").
		Joins("JOIN products AS p ON p.id = ps.product_id")
}

func (r *repositoryImpl) Create(ctx context.Context, row *models.PriceSubmission) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repositoryImpl) Find(ctx context.Context, id int64) (*models.PriceSubmission, error) {
	var row models.PriceSubmission
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) View(ctx context.Context, id int64) (*SubmissionView, error) {
	var rows []SubmissionView
	if err := r.joined(ctx, "").Where("ps.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *repositoryImpl) Pending(ctx context.Context, locationID int64) ([]PendingView, error) {
	var rows []PendingView
	err := r.joined(ctx, "pr.price AS current_price").
		Joins("JOIN prices AS pr ON pr.product_id = ps.product_id AND pr.location_id = ps.location_id").
		Where("ps.location_id = ? AND ps.status = ?", locationID, string(enums.SubmissionStatusPending)).
		Order("ps.created_at ASC, ps.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) PriceExists(ctx context.Context, productID, locationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Price{}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) IsLocationOwner(ctx context.Context, ownerID, locationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Owner{}).
		Where("id = ? AND location_id = ?", ownerID, locationID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) Decide(ctx context.Context, id int64, status enums.SubmissionStatus, at time.Time) (bool, error) {
	column := "approved_at"
	if status == enums.SubmissionStatusRejected {
		column = "rejected_at"
	}
	result := r.db.WithContext(ctx).Model(&models.PriceSubmission{}).
		Where("id = ? AND status = ?", id, string(enums.SubmissionStatusPending)).
		Updates(map[string]any{"status": string(status), column: at})
	return result.RowsAffected > 0, result.Error
}
