package deals

import (
	"context"
	"testing"
	"time"

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

var now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

type countingScanner struct {
	calls int
}

func (c *countingScanner) ScanExpiringDeals(context.Context, time.Time) (int, error) {
	c.calls++
	return 0, nil
}

type fixture struct {
	client   *db.Client
	catalog  dbtest.Catalog
	svc      Service
	recorder *realtimetest.Recorder
	scanner  *countingScanner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	f := &fixture{
		client:   client,
		catalog:  dbtest.SeedCatalog(t, client),
		recorder: &realtimetest.Recorder{},
		scanner:  &countingScanner{},
	}
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(client.DB()),
		Expiry:   f.scanner,
		Notifier: f.recorder,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) owner() *pkgAuth.AccessTokenClaims {
	loc := f.catalog.LocationID
	return &pkgAuth.AccessTokenClaims{UserID: 3, Role: enums.RoleOwner, LocationID: &loc}
}

func (f *fixture) request(pct int64, start, end time.Time) CreateDealRequest {
	return CreateDealRequest{
		ProductID:  f.catalog.ProductID,
		LocationID: f.catalog.LocationID,
		Percentage: decimal.NewFromInt(pct),
		StartDate:  Timestamp{start},
		EndDate:    Timestamp{end},
	}
}

func (f *fixture) onDeal(t *testing.T) bool {
	t.Helper()
	var price models.Price
	require.NoError(t, f.client.DB().Take(&price, f.catalog.PriceID).Error)
	return price.OnDeal
}

func (f *fixture) dealCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.client.DB().Model(&models.Deal{}).Count(&n).Error)
	return n
}

func TestCreateActiveDeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.CreateDeal(ctx, f.owner(), f.request(20, now.Add(-time.Hour), now.Add(72*time.Hour)))
	require.NoError(t, err)
	assert.True(t, view.DealPrice.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, "Milk", view.ProductName)
	assert.True(t, f.onDeal(t))
	assert.Equal(t, 1, f.recorder.Count(realtime.EventNewDeal))
	assert.Equal(t, 1, f.scanner.calls)

	active, err := f.svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Deak", active[0].LocationName)
}

func TestCreateScheduledDealActivatesLater(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := now.Add(2 * time.Hour)

	_, err := f.svc.CreateDeal(ctx, f.owner(), f.request(10, start, start.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.False(t, f.onDeal(t))

	n, err := f.svc.SweepActivate(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.svc.SweepActivate(ctx, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, f.onDeal(t))

	n, err = f.svc.SweepActivate(ctx, start.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateDuplicateDealLeavesExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateDeal(ctx, f.owner(), f.request(20, now, now.Add(time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.CreateDeal(ctx, f.owner(), f.request(50, now, now.Add(5*time.Hour)))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, duplicateDealMessage, pkgerrors.As(err).Message())

	var deal models.Deal
	require.NoError(t, f.client.DB().Take(&deal).Error)
	assert.True(t, deal.Percentage.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, int64(1), f.dealCount(t))
}

func TestCreateDealValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, pct := range []int64{0, -5, 101} {
		_, err := f.svc.CreateDeal(ctx, f.owner(), f.request(pct, now, now.Add(time.Hour)))
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "pct %d", pct)
	}
	_, err := f.svc.CreateDeal(ctx, f.owner(), f.request(10, now, now.Add(-time.Hour)))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	missing := f.request(10, now, now.Add(time.Hour))
	missing.ProductID += 99
	_, err = f.svc.CreateDeal(ctx, f.owner(), missing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	other := f.catalog.OtherLocationID
	stranger := &pkgAuth.AccessTokenClaims{UserID: 4, Role: enums.RoleOwner, LocationID: &other}
	_, err = f.svc.CreateDeal(ctx, stranger, f.request(10, now, now.Add(time.Hour)))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Zero(t, f.dealCount(t))
}

func TestUpdateDealRederivesFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateDeal(ctx, f.owner(), f.catalog.ProductID, UpdateDealRequest{
		LocationID: f.catalog.LocationID, Percentage: decimal.NewFromInt(10), EndDate: Timestamp{now.Add(time.Hour)},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.CreateDeal(ctx, f.owner(), f.request(20, now.Add(-48*time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	require.True(t, f.onDeal(t))

	view, err := f.svc.UpdateDeal(ctx, f.owner(), f.catalog.ProductID, UpdateDealRequest{
		LocationID: f.catalog.LocationID, Percentage: decimal.NewFromInt(25), EndDate: Timestamp{now.Add(-time.Hour)},
	})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.True(t, view.DealPrice.Equal(decimal.NewFromInt(75)))
	assert.False(t, f.onDeal(t))
	assert.Equal(t, 1, f.recorder.Count(realtime.EventDealUpdated))
}

func TestRemoveDeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateDeal(ctx, f.owner(), f.request(20, now, now.Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveDeal(ctx, f.owner(), f.catalog.ProductID, f.catalog.LocationID))
	assert.False(t, f.onDeal(t))
	assert.Zero(t, f.dealCount(t))

	removed := f.recorder.ForRoom("")
	last := removed[len(removed)-1]
	assert.Equal(t, realtime.EventDealRemoved, last.Event)
	assert.Equal(t, Removed{ProductID: f.catalog.ProductID, LocationID: f.catalog.LocationID}, last.Data)

	err = f.svc.RemoveDeal(ctx, f.owner(), f.catalog.ProductID, f.catalog.LocationID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateDeal(ctx, f.owner(), f.request(20, now.Add(-2*time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	require.True(t, f.onDeal(t))

	swept, err := f.svc.SweepExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, swept)

	swept, err = f.svc.SweepExpired(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	assert.False(t, f.onDeal(t))
	assert.Zero(t, f.dealCount(t))

	swept, err = f.svc.SweepExpired(ctx, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, swept)
}
