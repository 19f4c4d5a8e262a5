// Package search finds the cheapest price of each product in the caller's
// country, optionally limited to a chain and a radius around a point.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/geo"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/types"
	"github.com/shopspring/decimal"
)

// Query holds the optional search filters. RadiusKm only applies when Origin
// is set.
type Query struct {
	Text          string
	SupermarketID int64
	Origin        *types.Coordinates
	RadiusKm      *float64
}

type Result struct {
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ImagePath        string          `json:"image_path"`
	SupermarketID    int64           `json:"supermarket_id"`
	SupermarketName  string          `json:"supermarket_name"`
	SupermarketImage *string         `json:"supermarket_image"`
	LocationID       int64           `json:"location_id"`
	LocationName     string          `json:"location_name"`
	Country          string          `json:"country"`
	Price            decimal.Decimal `json:"price"`
	LastUpdated      time.Time       `json:"last_updated"`
	OnDeal           bool            `json:"on_deal"`
	Distance         *float64        `json:"distance"`
}

type Service interface {
	Search(ctx context.Context, claims *pkgAuth.AccessTokenClaims, query Query) ([]Result, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "search repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Search(ctx context.Context, claims *pkgAuth.AccessTokenClaims, query Query) ([]Result, error) {
	if claims == nil || strings.TrimSpace(claims.Country) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "User country not found")
	}
	if query.Origin != nil && !query.Origin.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid coordinates")
	}
	if query.RadiusKm != nil && *query.RadiusKm <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "radius must be positive")
	}

	text := strings.TrimSpace(query.Text)
	if strings.EqualFold(text, "all") {
		text = ""
	}
	rows, err := s.repo.Candidates(ctx, claims.Country, text, query.SupermarketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	return cheapestPerProduct(rows, query.Origin, query.RadiusKm), nil
}

// cheapestPerProduct keeps, per product, the first row with the lowest price
// among rows inside the radius. Input order breaks ties.
func cheapestPerProduct(rows []candidate, origin *types.Coordinates, radiusKm *float64) []Result {
	best := make(map[int64]int)
	out := make([]Result, 0)
	for _, row := range rows {
		var distance *float64
		if origin != nil {
			d := geo.DistanceKm(*origin, types.Coordinates{Lat: row.Latitude, Lng: row.Longitude})
			if radiusKm != nil && d > *radiusKm {
				continue
			}
			distance = &d
		}

		result := Result{
			ProductID:        row.ProductID,
			ProductName:      row.ProductName,
			ImagePath:        row.ImagePath,
			SupermarketID:    row.SupermarketID,
			SupermarketName:  row.SupermarketName,
			SupermarketImage: row.SupermarketImage,
			LocationID:       row.LocationID,
			LocationName:     row.LocationName,
			Country:          row.Country,
			Price:            row.Price,
			LastUpdated:      row.LastUpdated,
			OnDeal:           row.OnDeal,
			Distance:         distance,
		}
		idx, seen := best[row.ProductID]
		if !seen {
			best[row.ProductID] = len(out)
			out = append(out, result)
			continue
		}
		if row.Price.LessThan(out[idx].Price) {
			out[idx] = result
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProductName < out[j].ProductName
	})
	return out
}
