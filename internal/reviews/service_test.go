package reviews

import (
	"context"
	"testing"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime/realtimetest"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/dbtest"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycle(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, client)
	alice := dbtest.SeedCustomer(t, client, "alice")
	bob := dbtest.SeedCustomer(t, client, "bob")
	recorder := &realtimetest.Recorder{}
	svc, err := NewService(NewRepository(client.DB()), recorder)
	require.NoError(t, err)

	aliceClaims := &pkgAuth.AccessTokenClaims{UserID: alice, Role: enums.RoleCustomer}
	review, err := svc.Create(ctx, aliceClaims, CreateRequest{ProductID: catalog.ProductID, LocationID: catalog.LocationID, Rating: 4, Comment: " fresh "})
	require.NoError(t, err)
	assert.Equal(t, "alice", review.CustomerName)
	assert.Equal(t, "Deak", review.LocationName)
	assert.Equal(t, "fresh", review.Comment)
	assert.Equal(t, 1, recorder.Count(realtime.EventNewReview))

	_, err = svc.Create(ctx, aliceClaims, CreateRequest{ProductID: catalog.ProductID, LocationID: catalog.LocationID, Rating: 6})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	list, err := svc.List(ctx, catalog.ProductID, catalog.LocationID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = svc.Delete(ctx, &pkgAuth.AccessTokenClaims{UserID: bob, Role: enums.RoleCustomer}, review.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Equal(t, "Not authorized to delete", pkgerrors.As(err).Message())

	require.NoError(t, svc.Delete(ctx, aliceClaims, review.ID))
	assert.Equal(t, 1, recorder.Count(realtime.EventReviewDeleted))

	err = svc.Delete(ctx, aliceClaims, review.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestOwnersCannotReview(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), nil)
	require.NoError(t, err)
	loc := int64(1)
	_, err = svc.Create(context.Background(), &pkgAuth.AccessTokenClaims{UserID: 1, Role: enums.RoleOwner, LocationID: &loc},
		CreateRequest{ProductID: 1, LocationID: 1, Rating: 5})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
