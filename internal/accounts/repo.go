package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no customer or owner matches.
var ErrNotFound = errors.New("account not found")

// Repository is the polymorphic account store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, role enums.Role, id int64) (Account, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	CreateOwner(ctx context.Context, owner *models.Owner) error
	UpdatePasswordHash(ctx context.Context, role enums.Role, id int64, hash string) error
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

// FindByEmail checks customers first, then owners.
func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) (Account, error) {
	email = normalizeEmail(email)

	var customer models.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&customer).Error
	if err == nil {
		return customerFromModel(customer), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var owner models.Owner
	err = r.db.WithContext(ctx).Where("email = ?", email).Take(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.ownerWithLocation(ctx, owner)
}

func (r *repositoryImpl) FindByID(ctx context.Context, role enums.Role, id int64) (Account, error) {
	switch role {
	case enums.RoleCustomer:
		var customer models.Customer
		err := r.db.WithContext(ctx).Where("id = ?", id).Take(&customer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return customerFromModel(customer), nil
	case enums.RoleOwner:
		var owner models.Owner
		err := r.db.WithContext(ctx).Where("id = ?", id).Take(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return r.ownerWithLocation(ctx, owner)
	}
	return nil, ErrNotFound
}

func (r *repositoryImpl) EmailTaken(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	for _, model := range []any{&models.Customer{}, &models.Owner{}} {
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Where("email = ?", email).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *repositoryImpl) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.Email = normalizeEmail(customer.Email)
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repositoryImpl) CreateOwner(ctx context.Context, owner *models.Owner) error {
	owner.Email = normalizeEmail(owner.Email)
	return r.db.WithContext(ctx).Create(owner).Error
}

// UpdatePasswordHash replaces the stored hash, used to upgrade legacy hashes on login.
func (r *repositoryImpl) UpdatePasswordHash(ctx context.Context, role enums.Role, id int64, hash string) error {
	var model any
	switch role {
	case enums.RoleCustomer:
		model = &models.Customer{}
	case enums.RoleOwner:
		model = &models.Owner{}
	default:
		return ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) ownerWithLocation(ctx context.Context, owner models.Owner) (Account, error) {
	out := &Owner{
		ID:         owner.ID,
		Username:   owner.Username,
		Email:      owner.Email,
		Hash:       owner.PasswordHash,
		LocationID: owner.LocationID,
	}
	var location models.Location
	err := r.db.WithContext(ctx).Where("id = ?", owner.LocationID).Take(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.LocationName = location.Name
	out.Nation = location.Country
	out.Currency = location.CurrencyCode
	return out, nil
}

func customerFromModel(m models.Customer) *Customer {
	return &Customer{
		ID:       m.ID,
		Username: m.Username,
		Email:    m.Email,
		Hash:     m.PasswordHash,
		Nation:   m.Country,
		Currency: m.CurrencyCode,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
