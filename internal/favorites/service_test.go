package favorites

import (
	"context"
	"testing"

	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/dbtest"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoritesLifecycle(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, client)
	alice := dbtest.SeedCustomer(t, client, "alice")
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	claims := &pkgAuth.AccessTokenClaims{UserID: alice, Role: enums.RoleCustomer}

	fav, err := svc.Add(ctx, claims, AddRequest{UserID: alice, ProductID: catalog.ProductID, PriceID: catalog.PriceID})
	require.NoError(t, err)
	assert.Equal(t, catalog.PriceID, fav.PriceID)

	_, err = svc.Add(ctx, claims, AddRequest{UserID: alice, ProductID: catalog.ProductID, PriceID: catalog.PriceID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, duplicateMessage, pkgerrors.As(err).Message())

	_, err = svc.Add(ctx, claims, AddRequest{UserID: alice, ProductID: catalog.ProductID + 1, PriceID: catalog.PriceID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	list, err := svc.List(ctx, claims, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Remove(ctx, claims, alice, catalog.ProductID, catalog.PriceID))
	err = svc.Remove(ctx, claims, alice, catalog.ProductID, catalog.PriceID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Favorite not found", pkgerrors.As(err).Message())
}

func TestFavoritesAreSelfOnly(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)

	other := &pkgAuth.AccessTokenClaims{UserID: 2, Role: enums.RoleCustomer}
	_, err = svc.List(ctx, other, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	owner := &pkgAuth.AccessTokenClaims{UserID: 1, Role: enums.RoleOwner}
	_, err = svc.Add(ctx, owner, AddRequest{UserID: 1, ProductID: 1, PriceID: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.List(ctx, nil, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}
