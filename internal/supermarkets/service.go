// Package supermarkets manages supermarket chains and their store locations.
package supermarkets

import (
	"context"
	"strings"

	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
)

type Service interface {
	ListSupermarkets(ctx context.Context) ([]SupermarketDTO, error)
	CreateSupermarket(ctx context.Context, req CreateSupermarketRequest) (*SupermarketDTO, error)
	ListLocations(ctx context.Context) ([]LocationDTO, error)
	ListLocationNames(ctx context.Context) ([]LocationName, error)
	LocationsBySupermarket(ctx context.Context, supermarketID int64) ([]LocationDTO, error)
	CreateLocation(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req LocationRequest) (*LocationDTO, error)
	UpdateLocation(ctx context.Context, claims *pkgAuth.AccessTokenClaims, locationID int64, req LocationRequest) error
	DeleteLocation(ctx context.Context, claims *pkgAuth.AccessTokenClaims, locationID int64) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "supermarkets repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListSupermarkets(ctx context.Context) ([]SupermarketDTO, error) {
	rows, err := s.repo.ListSupermarkets(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list supermarkets")
	}
	out := make([]SupermarketDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, supermarketFromModel(row))
	}
	return out, nil
}

func (s *service) CreateSupermarket(ctx context.Context, req CreateSupermarketRequest) (*SupermarketDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Supermarket name is required")
	}
	row := &models.Supermarket{Name: name}
	if err := s.repo.CreateSupermarket(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Supermarket already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create supermarket")
	}
	dto := supermarketFromModel(*row)
	return &dto, nil
}

func (s *service) ListLocations(ctx context.Context) ([]LocationDTO, error) {
	rows, err := s.repo.ListLocations(ctx, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list locations")
	}
	return locationsFromModels(rows), nil
}

func (s *service) ListLocationNames(ctx context.Context) ([]LocationName, error) {
	rows, err := s.repo.ListLocations(ctx, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list locations")
	}
	out := make([]LocationName, 0, len(rows))
	for _, row := range rows {
		out = append(out, LocationName{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (s *service) LocationsBySupermarket(ctx context.Context, supermarketID int64) ([]LocationDTO, error) {
	rows, err := s.repo.ListLocations(ctx, supermarketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list locations")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Supermarket locations not found")
	}
	return locationsFromModels(rows), nil
}

func (s *service) CreateLocation(ctx context.Context, claims *pkgAuth.AccessTokenClaims, req LocationRequest) (*LocationDTO, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if err := s.ensureSupermarket(ctx, req.SupermarketID); err != nil {
		return nil, err
	}

	row := &models.Location{
		SupermarketID: req.SupermarketID,
		Name:          strings.TrimSpace(req.Name),
		Country:       firstNonEmpty(req.Country, claims.Country),
		CurrencyCode:  strings.ToUpper(firstNonEmpty(req.CurrencyCode, claims.CurrencyCode)),
	}
	if req.Latitude != nil {
		row.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		row.Longitude = *req.Longitude
	}
	if row.Country == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "country is required")
	}

	if err := s.repo.CreateLocation(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create location")
	}
	dto := locationFromModel(*row)
	return &dto, nil
}

// UpdateLocation and DeleteLocation are limited to the location's own owner.
func (s *service) UpdateLocation(ctx context.Context, claims *pkgAuth.AccessTokenClaims, locationID int64, req LocationRequest) error {
	if !claims.OwnsLocation(locationID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	if err := s.ensureSupermarket(ctx, req.SupermarketID); err != nil {
		return err
	}
	found, err := s.repo.UpdateLocation(ctx, locationID, req.SupermarketID, strings.TrimSpace(req.Name))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update location")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Supermarket location not found")
	}
	return nil
}

func (s *service) DeleteLocation(ctx context.Context, claims *pkgAuth.AccessTokenClaims, locationID int64) error {
	if !claims.OwnsLocation(locationID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	found, err := s.repo.DeleteLocation(ctx, locationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete location")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Supermarket location not found")
	}
	return nil
}

func (s *service) ensureSupermarket(ctx context.Context, id int64) error {
	ok, err := s.repo.SupermarketExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check supermarket")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown supermarket").WithDetails(map[string]any{"supermarket_id": id})
	}
	return nil
}

func locationsFromModels(rows []models.Location) []LocationDTO {
	out := make([]LocationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, locationFromModel(row))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
