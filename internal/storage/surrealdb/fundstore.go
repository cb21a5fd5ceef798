package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// FundStore caches scheme metadata keyed by scheme code.
type FundStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewFundStore(db *surrealdb.DB, logger *common.Logger) *FundStore {
	return &FundStore{
		db:     db,
		logger: logger,
	}
}

func (s *FundStore) GetFund(ctx context.Context, schemeCode string) (*models.FundMeta, error) {
	fund, err := surrealdb.Select[models.FundMeta](ctx, s.db, surrealmodels.NewRecordID(tableFund, schemeCode))
	if err != nil {
		return nil, fmt.Errorf("failed to select fund: %w", err)
	}
	if fund == nil || fund.SchemeCode == "" {
		return nil, fmt.Errorf("fund %s: %w", schemeCode, interfaces.ErrNotFound)
	}
	return fund, nil
}

func (s *FundStore) SaveFund(ctx context.Context, fund *models.FundMeta) error {
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableFund, fund.SchemeCode), "record": fund}
	if _, err := surrealdb.Query[[]models.FundMeta](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save fund %s: %w", fund.SchemeCode, err)
	}
	return nil
}

var _ interfaces.FundStore = (*FundStore)(nil)
