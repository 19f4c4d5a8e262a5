package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/deals"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDealService struct {
	createErr error
	created   *deals.CreateDealRequest
	removed   [2]int64
}

func (s *stubDealService) ListActive(context.Context) ([]deals.DealView, error) { return nil, nil }

func (s *stubDealService) CreateDeal(_ context.Context, _ *pkgAuth.AccessTokenClaims, req deals.CreateDealRequest) (*deals.DealView, error) {
	s.created = &req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &deals.DealView{}, nil
}

func (s *stubDealService) UpdateDeal(context.Context, *pkgAuth.AccessTokenClaims, int64, deals.UpdateDealRequest) (*deals.DealView, error) {
	return &deals.DealView{}, nil
}

func (s *stubDealService) RemoveDeal(_ context.Context, _ *pkgAuth.AccessTokenClaims, productID, locationID int64) error {
	s.removed = [2]int64{productID, locationID}
	return nil
}

func (s *stubDealService) SweepExpired(context.Context, time.Time) (int, error)    { return 0, nil }
func (s *stubDealService) SweepActivate(context.Context, time.Time) (int64, error) { return 0, nil }

func TestDealCreate(t *testing.T) {
	body := `{"productId":4,"locationId":2,"PercentageDiscount":20,"dealStartDate":"2026-03-01","dealEndDate":"2026-03-10T18:00"}`

	t.Run("created", func(t *testing.T) {
		svc := &stubDealService{}
		req := httptest.NewRequest(http.MethodPost, "/api/deals", bytes.NewBufferString(body))
		rec := serve(t, DealCreate(svc, testLogger()), req, ownerClaims(2), nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.created)
		assert.Equal(t, "20", svc.created.Percentage.String())
		assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), svc.created.EndDate.Time)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc := &stubDealService{createErr: pkgerrors.New(pkgerrors.CodeConflict, "A deal already exists for this product at this location")}
		req := httptest.NewRequest(http.MethodPost, "/api/deals", bytes.NewBufferString(body))
		rec := serve(t, DealCreate(svc, testLogger()), req, ownerClaims(2), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDealDeleteReadsLocationQuery(t *testing.T) {
	svc := &stubDealService{}
	req := httptest.NewRequest(http.MethodDelete, "/api/deals/4?locationId=2", nil)

	rec := serve(t, DealDelete(svc, testLogger()), req, ownerClaims(2), map[string]string{"productId": "4"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]int64{4, 2}, svc.removed)
}
