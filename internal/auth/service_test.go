package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/accounts"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/config"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/dbtest"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	testJWT      = config.JWTConfig{Secret: "secret", Issuer: "pricecompare", ExpirationMinutes: 1440}
	testPassword = config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

type fakeSessions struct {
	opened  []string
	revoked []string
	openErr error
}

func (f *fakeSessions) Open(ctx context.Context, accessID string, userID int64) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, accessID)
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func newTestService(t *testing.T, sessions sessionManager) (*service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		DB:             client,
		Accounts:       accounts.NewRepository(client.DB()),
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
	})
	require.NoError(t, err)
	return svc.(*service), client
}

func seedSupermarket(t *testing.T, client *db.Client) int64 {
	t.Helper()
	sm := models.Supermarket{Name: "Spar"}
	require.NoError(t, client.DB().Create(&sm).Error)
	return sm.ID
}

func ownerRequest(email string, supermarketID int64) RegisterRequest {
	return RegisterRequest{
		Name:                "Olga",
		Email:               email,
		Password:            "secret1",
		Country:             "Hungary",
		Role:                "owner",
		CurrencyCode:        "huf",
		SupermarketLocation: &types.Coordinates{Lat: 47.4979, Lng: 19.0402},
		SupermarketType:     &supermarketID,
		SupermarketName:     "Spar Deak",
	}
}

func TestRegisterCustomerThenLogin(t *testing.T) {
	ctx := context.Background()
	sessions := &fakeSessions{}
	svc, _ := newTestService(t, sessions)

	resp, err := svc.Register(ctx, RegisterRequest{
		Name: "Anna", Email: "Anna@example.com", Password: "secret1",
		Country: "Kenya", Role: "customer", CurrencyCode: "KES",
	})
	require.NoError(t, err)
	assert.Equal(t, "customer registered successfully", resp.Message)

	login, err := svc.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleCustomer, login.Role)
	assert.Equal(t, "Kenya", login.Country)
	assert.Nil(t, login.LocationID)
	require.Len(t, sessions.opened, 1)

	claims, err := pkgAuth.ParseAccessToken(testJWT, login.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, "KES", claims.CurrencyCode)
	assert.Equal(t, sessions.opened[0], claims.ID)
}

func TestRegisterOwnerCreatesLocation(t *testing.T) {
	ctx := context.Background()
	svc, client := newTestService(t, nil)
	supermarketID := seedSupermarket(t, client)

	_, err := svc.Register(ctx, ownerRequest("olga@example.com", supermarketID))
	require.NoError(t, err)

	login, err := svc.Login(ctx, LoginRequest{Email: "olga@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, login.LocationID)
	assert.Equal(t, "Spar Deak", *login.LocationName)
	assert.Equal(t, "HUF", login.CurrencyCode)

	claims, err := pkgAuth.ParseAccessToken(testJWT, login.Token)
	require.NoError(t, err)
	assert.True(t, claims.OwnsLocation(*login.LocationID))
}

func TestRegisterDuplicateEmailAcrossTables(t *testing.T) {
	ctx := context.Background()
	svc, client := newTestService(t, nil)
	supermarketID := seedSupermarket(t, client)

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "dup@example.com", Password: "secret1", Country: "Kenya", Role: "customer", CurrencyCode: "KES"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, ownerRequest("dup@example.com", supermarketID))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, userExistsMessage, typed.Message())

	_, err = svc.Register(ctx, ownerRequest("owner@example.com", supermarketID))
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Name: "B", Email: "owner@example.com", Password: "secret1", Country: "Kenya", Role: "customer", CurrencyCode: "KES"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var locations int64
	require.NoError(t, client.DB().Model(&models.Location{}).Count(&locations).Error)
	assert.Equal(t, int64(1), locations)
}

func TestRegisterOwnerRequiresLocationFields(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Register(context.Background(), RegisterRequest{Name: "O", Email: "o@example.com", Password: "secret1", Country: "Kenya", Role: "owner", CurrencyCode: "KES"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, client := newTestService(t, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("legacy"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, client.DB().Create(&models.Customer{Username: "L", Email: "legacy@example.com", PasswordHash: string(hash), Country: "Kenya", CurrencyCode: "KES"}).Error)

	_, err = svc.Login(ctx, LoginRequest{Email: "missing@example.com", Password: "x"})
	assert.Equal(t, userNotFoundMessage, pkgerrors.As(err).Message())

	_, err = svc.Login(ctx, LoginRequest{Email: "legacy@example.com", Password: "wrong"})
	assert.Equal(t, invalidPasswordMessage, pkgerrors.As(err).Message())

	resp, err := svc.Login(ctx, LoginRequest{Email: "legacy@example.com", Password: "legacy"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	// The bcrypt hash is upgraded to argon2id and still verifies.
	var stored models.Customer
	require.NoError(t, client.DB().Where("email = ?", "legacy@example.com").Take(&stored).Error)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	_, err = svc.Login(ctx, LoginRequest{Email: "legacy@example.com", Password: "legacy"})
	require.NoError(t, err)
}

func TestLoginSessionStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeSessions{openErr: errors.New("redis down")})
	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1", Country: "Kenya", Role: "customer", CurrencyCode: "KES"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessions{}
	svc, _ := newTestService(t, sessions)
	claims := &pkgAuth.AccessTokenClaims{UserID: 1, Role: enums.RoleCustomer}
	claims.ID = "jti-1"

	require.NoError(t, svc.Logout(context.Background(), claims))
	assert.Equal(t, []string{"jti-1"}, sessions.revoked)

	assert.Error(t, svc.Logout(context.Background(), nil))
}
