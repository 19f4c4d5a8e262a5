// Package users serves the signed-in account's own profile.
package users

import (
	"context"
	"errors"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/accounts"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
)

// Profile omits credentials. Location is only set for owners.
type Profile struct {
	UserID   int64      `json:"user_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
	Country  string     `json:"country"`
	Location *string    `json:"location,omitempty"`
}

type Service interface {
	Profile(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID int64) (*Profile, error)
}

type service struct {
	accounts accounts.Repository
}

func NewService(repo accounts.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "accounts repository required")
	}
	return &service{accounts: repo}, nil
}

// Profile looks userID up in the table matching the caller's role; callers
// may only read their own profile.
func (s *service) Profile(ctx context.Context, claims *pkgAuth.AccessTokenClaims, userID int64) (*Profile, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token provided")
	}
	if claims.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another user's profile")
	}

	account, err := s.accounts.FindByID(ctx, claims.Role, userID)
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	profile := &Profile{
		UserID:   account.AccountID(),
		Username: account.DisplayName(),
		Email:    account.EmailAddress(),
		Role:     account.Role(),
		Country:  account.Country(),
	}
	if owner, ok := account.(*accounts.Owner); ok {
		name := owner.LocationName
		profile.Location = &name
	}
	return profile, nil
}
