package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	user := &models.User{
		UserID:       "u-1",
		Username:     "asha",
		Email:        "asha@example.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	require.NoError(t, store.SaveUser(ctx, user))

	got, err := store.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "asha", got.Username)

	byName, err := store.GetUserByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byName.UserID)

	byEmail, err := store.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.UserID)

	require.NoError(t, store.DeleteUser(ctx, "u-1"))
	_, err = store.GetUser(ctx, "u-1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestUserStoreNotFound(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	_, err := store.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestPortfolioStoreScopedByUser(t *testing.T) {
	db := testDB(t)
	store := NewPortfolioStore(db, testLogger())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	p := &models.Portfolio{
		ID:     "p-1",
		UserID: "u-1",
		Name:   "Retirement",
		Holdings: []models.StoredHolding{
			{ID: "h-1", SchemeCode: "119551", Units: 100, BuyPrice: 10, BuyDate: now.AddDate(-1, 0, 0), AddedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.SavePortfolio(ctx, p))

	got, err := store.GetPortfolio(ctx, "u-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Retirement", got.Name)
	require.Len(t, got.Holdings, 1)
	assert.Equal(t, "119551", got.Holdings[0].SchemeCode)
	assert.Equal(t, 100.0, got.Holdings[0].Units)

	_, err = store.GetPortfolio(ctx, "u-2", "p-1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	list, err := store.ListPortfolios(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = store.ListPortfolios(ctx, "u-2")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, store.DeletePortfolio(ctx, "u-2", "p-1"), interfaces.ErrNotFound)
	require.NoError(t, store.DeletePortfolio(ctx, "u-1", "p-1"))
	_, err = store.GetPortfolio(ctx, "u-1", "p-1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestPortfolioStoreUpsert(t *testing.T) {
	db := testDB(t)
	store := NewPortfolioStore(db, testLogger())
	ctx := context.Background()

	p := &models.Portfolio{ID: "p-2", UserID: "u-1", Name: "Before"}
	require.NoError(t, store.SavePortfolio(ctx, p))
	p.Name = "After"
	require.NoError(t, store.SavePortfolio(ctx, p))

	got, err := store.GetPortfolio(ctx, "u-1", "p-2")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
}

func TestFundStoreNotFound(t *testing.T) {
	db := testDB(t)
	store := NewFundStore(db, testLogger())

	_, err := store.GetFund(context.Background(), "000000")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}
