package auth

import (
	"context"
	"strings"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/security"
	"gorm.io/gorm"
)

const userExistsMessage = "User already exists"

// Register creates a customer, or an owner together with their location, in
// one transaction. The email must be unused in both account tables.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if role == enums.RoleOwner {
		if err := validateOwnerFields(req); err != nil {
			return nil, err
		}
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hash password")
	}

	var userID int64
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.accounts.WithTx(tx)

		taken, err := repo.EmailTaken(ctx, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, userExistsMessage)
		}

		if role == enums.RoleCustomer {
			customer := &models.Customer{
				Username:     strings.TrimSpace(req.Name),
				Email:        email,
				PasswordHash: passwordHash,
				Country:      strings.TrimSpace(req.Country),
				CurrencyCode: strings.ToUpper(strings.TrimSpace(req.CurrencyCode)),
			}
			if err := repo.CreateCustomer(ctx, customer); err != nil {
				return wrapCreateErr(err, "create customer")
			}
			userID = customer.ID
			return nil
		}

		var supermarketCount int64
		if err := tx.WithContext(ctx).Model(&models.Supermarket{}).Where("id = ?", *req.SupermarketType).Count(&supermarketCount).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check supermarket")
		}
		if supermarketCount == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown supermarket").WithDetails(map[string]any{"supermarketType": *req.SupermarketType})
		}

		location := &models.Location{
			SupermarketID: *req.SupermarketType,
			Name:          strings.TrimSpace(req.SupermarketName),
			Latitude:      req.SupermarketLocation.Lat,
			Longitude:     req.SupermarketLocation.Lng,
			Country:       strings.TrimSpace(req.Country),
			CurrencyCode:  strings.ToUpper(strings.TrimSpace(req.CurrencyCode)),
		}
		if err := tx.WithContext(ctx).Create(location).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create location")
		}

		owner := &models.Owner{
			Username:     strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: passwordHash,
			LocationID:   location.ID,
		}
		if err := repo.CreateOwner(ctx, owner); err != nil {
			return wrapCreateErr(err, "create owner")
		}
		userID = owner.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		Message: role.String() + " registered successfully",
		UserID:  userID,
	}, nil
}

func validateOwnerFields(req RegisterRequest) error {
	details := map[string]string{}
	if req.SupermarketLocation == nil || !req.SupermarketLocation.Valid() {
		details["supermarketLocation"] = "is required"
	}
	if req.SupermarketType == nil || *req.SupermarketType <= 0 {
		details["supermarketType"] = "is required"
	}
	if strings.TrimSpace(req.SupermarketName) == "" {
		details["supermarketName"] = "is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func wrapCreateErr(err error, step string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, userExistsMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}
