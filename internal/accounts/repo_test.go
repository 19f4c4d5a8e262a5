package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/dbtest"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByEmailResolvesBothRoles(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	location := models.Location{SupermarketID: 1, Name: "Corvin", Country: "Hungary", CurrencyCode: "HUF"}
	require.NoError(t, client.DB().Create(&location).Error)
	require.NoError(t, repo.CreateCustomer(ctx, &models.Customer{Username: "anna", Email: "Anna@Example.com", PasswordHash: "h1", Country: "Hungary", CurrencyCode: "HUF"}))
	require.NoError(t, repo.CreateOwner(ctx, &models.Owner{Username: "olga", Email: "olga@example.com", PasswordHash: "h2", LocationID: location.ID}))

	customer, err := repo.FindByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, enums.RoleCustomer, customer.Role())
	assert.Equal(t, "Hungary", customer.Country())

	owner, err := repo.FindByEmail(ctx, " OLGA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, enums.RoleOwner, owner.Role())
	typed, ok := owner.(*Owner)
	require.True(t, ok)
	assert.Equal(t, location.ID, typed.LocationID)
	assert.Equal(t, "Corvin", typed.LocationName)
	assert.Equal(t, "HUF", typed.CurrencyCode())

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindByIDUsesRole(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	customer := &models.Customer{Username: "ben", Email: "ben@example.com", PasswordHash: "h", Country: "Kenya", CurrencyCode: "KES"}
	require.NoError(t, repo.CreateCustomer(ctx, customer))

	found, err := repo.FindByID(ctx, enums.RoleCustomer, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "ben", found.DisplayName())

	_, err = repo.FindByID(ctx, enums.RoleOwner, customer.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEmailTakenAcrossTables(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	require.NoError(t, repo.CreateOwner(ctx, &models.Owner{Username: "o", Email: "shared@example.com", PasswordHash: "h", LocationID: 1}))

	taken, err := repo.EmailTaken(ctx, "SHARED@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailTaken(ctx, "free@example.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	customer := &models.Customer{Username: "cid", Email: "cid@example.com", PasswordHash: "$2a$old", Country: "Kenya", CurrencyCode: "KES"}
	require.NoError(t, repo.CreateCustomer(ctx, customer))

	require.NoError(t, repo.UpdatePasswordHash(ctx, enums.RoleCustomer, customer.ID, "$argon2id$new"))
	found, err := repo.FindByID(ctx, enums.RoleCustomer, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$new", found.PasswordHash())

	err = repo.UpdatePasswordHash(ctx, enums.RoleOwner, customer.ID+99, "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}
