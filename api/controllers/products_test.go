package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	product "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/products"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductService struct {
	getErr     error
	deleted    int64
	created    *product.CreateInput
	gotProduct int64
	gotLoc     int64
}

func (s *stubProductService) List(context.Context) ([]product.ProductDTO, error) { return nil, nil }

func (s *stubProductService) Get(_ context.Context, productID, locationID int64) (*product.ProductAtLocation, error) {
	s.gotProduct, s.gotLoc = productID, locationID
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &product.ProductAtLocation{}, nil
}

func (s *stubProductService) Details(context.Context, int64) (*product.ProductDetails, error) {
	return nil, nil
}

func (s *stubProductService) InStock(context.Context, int64) ([]product.InStockItem, error) {
	return nil, nil
}

func (s *stubProductService) Create(_ context.Context, _ *pkgAuth.AccessTokenClaims, input product.CreateInput) (*product.CreatedProduct, error) {
	s.created = &input
	return &product.CreatedProduct{}, nil
}

func (s *stubProductService) Delete(_ context.Context, _ *pkgAuth.AccessTokenClaims, productID int64) error {
	s.deleted = productID
	return nil
}

func TestProductAtLocation(t *testing.T) {
	t.Run("missing location", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/4", nil)
		rec := serve(t, ProductAtLocation(&stubProductService{}, testLogger()), req, nil, map[string]string{"id": "4"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no price row", func(t *testing.T) {
		svc := &stubProductService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "Product not found at this location")}
		req := httptest.NewRequest(http.MethodGet, "/api/products/4?locationId=2", nil)
		rec := serve(t, ProductAtLocation(svc, testLogger()), req, nil, map[string]string{"id": "4"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, int64(4), svc.gotProduct)
		assert.Equal(t, int64(2), svc.gotLoc)
	})
}

func TestProductDelete(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodDelete, "/api/products/4", nil)

	rec := serve(t, ProductDelete(svc, testLogger()), req, nil, map[string]string{"id": "4"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, ProductDelete(svc, testLogger()), req, ownerClaims(2), map[string]string{"id": "not-a-number"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, ProductDelete(svc, testLogger()), req, ownerClaims(2), map[string]string{"id": "4"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), svc.deleted)
}

func TestProductCreateParsesMultipart(t *testing.T) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("productName", "Milk"))
	require.NoError(t, form.WriteField("productPrice", "1.99"))
	require.NoError(t, form.WriteField("categoryId", "3"))
	part, err := form.CreateFormFile("productImage", "milk.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	svc := &stubProductService{}

	rec := serve(t, ProductCreate(svc, 1<<20, testLogger()), req, ownerClaims(2), nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "Milk", svc.created.Name)
	assert.Equal(t, "1.99", svc.created.Price.String())
	assert.Equal(t, int64(3), svc.created.CategoryID)
	assert.Equal(t, "milk.png", svc.created.ImageName)
}

func TestProductCreateRequiresImage(t *testing.T) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("productName", "Milk"))
	require.NoError(t, form.WriteField("productPrice", "1.99"))
	require.NoError(t, form.WriteField("categoryId", "3"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())

	rec := serve(t, ProductCreate(&stubProductService{}, 1<<20, testLogger()), req, ownerClaims(2), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
