package prices

import (
	"context"
	"testing"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/alerts"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime/realtimetest"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/dbtest"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	client   *db.Client
	catalog  dbtest.Catalog
	svc      Service
	recorder *realtimetest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	recorder := &realtimetest.Recorder{}
	alertSvc, err := alerts.NewService(alerts.ServiceParams{
		Repo:     alerts.NewRepository(client.DB()),
		Notifier: recorder,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(client.DB()),
		Alerts:   alertSvc,
		Notifier: recorder,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)
	return &fixture{client: client, catalog: dbtest.SeedCatalog(t, client), svc: svc, recorder: recorder}
}

func ownerOf(locationID int64) *pkgAuth.AccessTokenClaims {
	return &pkgAuth.AccessTokenClaims{UserID: 7, Role: enums.RoleOwner, LocationID: &locationID}
}

func TestUpdatePriceDropFansOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := dbtest.SeedCustomer(t, f.client, "alice")
	bob := dbtest.SeedCustomer(t, f.client, "bob")
	require.NoError(t, f.client.DB().Create(&models.Favorite{UserID: alice, ProductID: f.catalog.ProductID, PriceID: f.catalog.PriceID}).Error)
	require.NoError(t, f.client.DB().Create(&models.Favorite{UserID: bob, ProductID: f.catalog.ProductID, PriceID: f.catalog.OtherPriceID}).Error)

	view, err := f.svc.UpdatePrice(ctx, ownerOf(f.catalog.LocationID), f.catalog.ProductID,
		UpdatePriceRequest{Price: decimal.NewFromInt(80), LocationID: f.catalog.LocationID})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.True(t, view.Price.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, "Lidl", view.SupermarketName)

	assert.Equal(t, 1, f.recorder.Count(realtime.EventPriceUpdated))
	assert.Equal(t, 1, f.recorder.Count(realtime.EventPriceDropped))
	assert.Len(t, f.recorder.ForRoom(realtime.UserRoom(alice)), 1)
	assert.Empty(t, f.recorder.ForRoom(realtime.UserRoom(bob)))

	for _, sent := range f.recorder.Sent() {
		if sent.Event == realtime.EventPriceDropped {
			drop := sent.Data.(PriceDropView)
			assert.Equal(t, "20.0", drop.DropPercentage)
			assert.True(t, drop.OldPrice.Equal(decimal.NewFromInt(100)))
		}
	}
}

func TestUpdatePriceIncreaseOnlyBroadcastsUpdate(t *testing.T) {
	f := newFixture(t)
	alice := dbtest.SeedCustomer(t, f.client, "alice")
	require.NoError(t, f.client.DB().Create(&models.Favorite{UserID: alice, ProductID: f.catalog.ProductID, PriceID: f.catalog.PriceID}).Error)

	_, err := f.svc.UpdatePrice(context.Background(), ownerOf(f.catalog.LocationID), f.catalog.ProductID,
		UpdatePriceRequest{Price: decimal.NewFromInt(150), LocationID: f.catalog.LocationID})
	require.NoError(t, err)

	assert.Equal(t, 1, f.recorder.Count(realtime.EventPriceUpdated))
	assert.Zero(t, f.recorder.Count(realtime.EventPriceDropped))
	var count int64
	require.NoError(t, f.client.DB().Model(&models.Alert{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdatePriceErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdatePrice(ctx, ownerOf(f.catalog.OtherLocationID), f.catalog.ProductID,
		UpdatePriceRequest{Price: decimal.NewFromInt(50), LocationID: f.catalog.LocationID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.UpdatePrice(ctx, ownerOf(f.catalog.LocationID), f.catalog.ProductID+99,
		UpdatePriceRequest{Price: decimal.NewFromInt(50), LocationID: f.catalog.LocationID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Price entry not found", pkgerrors.As(err).Message())

	_, err = f.svc.UpdatePrice(ctx, ownerOf(f.catalog.LocationID), f.catalog.ProductID,
		UpdatePriceRequest{Price: decimal.Zero, LocationID: f.catalog.LocationID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreatePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := ownerOf(f.catalog.LocationID)

	_, err := f.svc.Create(ctx, owner, CreatePriceRequest{ProductID: f.catalog.ProductID, Price: decimal.NewFromInt(90), LocationID: f.catalog.LocationID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, "Product already exists in the supermarket", pkgerrors.As(err).Message())

	_, err = f.svc.Create(ctx, owner, CreatePriceRequest{ProductID: f.catalog.ProductID + 50, Price: decimal.NewFromInt(90), LocationID: f.catalog.LocationID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	bread := models.Product{Name: "Bread", CategoryID: f.catalog.CategoryID, Country: "Hungary"}
	require.NoError(t, f.client.DB().Create(&bread).Error)
	row, err := f.svc.Create(ctx, owner, CreatePriceRequest{ProductID: bread.ID, Price: decimal.RequireFromString("2.499"), LocationID: f.catalog.LocationID})
	require.NoError(t, err)
	assert.Equal(t, "2.5", row.Price.String())
}

func TestByProductCheapestFirst(t *testing.T) {
	f := newFixture(t)
	rows, err := f.svc.ByProduct(context.Background(), f.catalog.ProductID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, f.catalog.LocationID, rows[0].LocationID)
	assert.Equal(t, "Deak", rows[0].LocationName)
	assert.Equal(t, f.catalog.OtherLocationID, rows[1].LocationID)

	empty, err := f.svc.ByProduct(context.Background(), f.catalog.ProductID+1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
