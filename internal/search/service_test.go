package search

import (
	"context"
	"testing"

	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/dbtest"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerClaims(country string) *pkgAuth.AccessTokenClaims {
	return &pkgAuth.AccessTokenClaims{UserID: 1, Role: enums.RoleCustomer, Country: country}
}

func newFixture(t *testing.T) (Service, dbtest.Catalog) {
	t.Helper()
	client := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, client)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return svc, catalog
}

func TestSearchReturnsCheapestPerProduct(t *testing.T) {
	svc, catalog := newFixture(t)

	results, err := svc.Search(context.Background(), customerClaims("Hungary"), Query{Text: "all"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, catalog.LocationID, results[0].LocationID)
	assert.True(t, results[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, results[0].Distance)
}

func TestSearchMatchesNameCaseInsensitively(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	results, err := svc.Search(ctx, customerClaims("Hungary"), Query{Text: "MIL"})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = svc.Search(ctx, customerClaims("Hungary"), Query{Text: "bread"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRadiusExcludesDistantLocations(t *testing.T) {
	svc, catalog := newFixture(t)
	radius := 5.0
	origin := types.Coordinates{Lat: 47.4979, Lng: 19.0402}

	results, err := svc.Search(context.Background(), customerClaims("Hungary"), Query{Origin: &origin, RadiusKm: &radius})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, catalog.LocationID, results[0].LocationID)
	require.NotNil(t, results[0].Distance)
	assert.InDelta(t, 0, *results[0].Distance, 0.001)
}

func TestSearchOtherCountryIsEmpty(t *testing.T) {
	svc, _ := newFixture(t)

	results, err := svc.Search(context.Background(), customerClaims("Austria"), Query{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRequiresCountry(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Search(context.Background(), customerClaims(""), Query{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	bad := types.Coordinates{Lat: 120, Lng: 0}
	_, err = svc.Search(context.Background(), customerClaims("Hungary"), Query{Origin: &bad})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCheapestPerProductKeepsFirstOnTie(t *testing.T) {
	rows := []candidate{
		{ProductID: 2, ProductName: "Bread", LocationID: 1, Price: decimal.NewFromInt(5)},
		{ProductID: 1, ProductName: "Apple", LocationID: 1, Price: decimal.NewFromInt(3)},
		{ProductID: 2, ProductName: "Bread", LocationID: 2, Price: decimal.NewFromInt(5)},
		{ProductID: 1, ProductName: "Apple", LocationID: 2, Price: decimal.NewFromInt(2)},
	}

	results := cheapestPerProduct(rows, nil, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "Apple", results[0].ProductName)
	assert.Equal(t, int64(2), results[0].LocationID)
	assert.Equal(t, "Bread", results[1].ProductName)
	assert.Equal(t, int64(1), results[1].LocationID)
}
