package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/models"
	tcommon "github.com/bobmcallan/navfolio/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	sc := tcommon.StartSurrealDB(t)

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Storage = common.StorageConfig{
		Backend:   "surrealdb",
		Address:   sc.Address(),
		Namespace: "navfolio_test",
		Database:  testDBName(t),
		Username:  "root",
		Password:  "root",
	}
	return cfg
}

func TestNewManager(t *testing.T) {
	cfg := testConfig(t)

	mgr, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer mgr.Close()

	assert.NotNil(t, mgr.UserStore())
	assert.NotNil(t, mgr.PortfolioStore())
	assert.NotNil(t, mgr.FundStore())
}

func TestManagerStoresShareConnection(t *testing.T) {
	cfg := testConfig(t)

	mgr, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer mgr.Close()

	ctx := context.Background()
	require.NoError(t, mgr.FundStore().SaveFund(ctx, &models.FundMeta{
		SchemeCode: "119551",
		SchemeName: "Aditya Birla Sun Life Banking & PSU Debt Fund",
		Category:   "Debt Scheme - Banking and PSU Fund",
		UpdatedAt:  time.Now().UTC().Truncate(time.Second),
	}))

	got, err := mgr.FundStore().GetFund(ctx, "119551")
	require.NoError(t, err)
	assert.Equal(t, "Debt Scheme - Banking and PSU Fund", got.Category)
}

func TestNewManagerBadAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Address = "ws://127.0.0.1:1/rpc"

	_, err := NewManager(common.NewSilentLogger(), cfg)
	assert.Error(t, err)
}
