// Package memory is a process-local storage backend used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

// Manager implements interfaces.StorageManager with maps guarded by one lock.
// Records are copied on the way in and out so callers never share state.
type Manager struct {
	mu         sync.RWMutex
	users      map[string]models.User
	portfolios map[string]models.Portfolio
	funds      map[string]models.FundMeta
}

// NewManager returns an empty in-memory store.
func NewManager() *Manager {
	return &Manager{
		users:      make(map[string]models.User),
		portfolios: make(map[string]models.Portfolio),
		funds:      make(map[string]models.FundMeta),
	}
}

func (m *Manager) UserStore() interfaces.UserStore { return userStore{m} }
func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return portfolioStore{m} }
func (m *Manager) FundStore() interfaces.FundStore { return fundStore{m} }
func (m *Manager) Close() error { return nil }

type userStore struct{ m *Manager }

func (s userStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, interfaces.ErrNotFound)
	}
	return &u, nil
}

func (s userStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Username == username }, "username "+username)
}

func (s userStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) }, "email "+email)
}

func (s userStore) find(match func(models.User) bool, desc string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, u := range s.m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with %s: %w", desc, interfaces.ErrNotFound)
}

func (s userStore) SaveUser(_ context.Context, user *models.User) error {
	if user.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.users[user.UserID] = *user
	return nil
}

func (s userStore) DeleteUser(_ context.Context, userID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.users, userID)
	return nil
}

type portfolioStore struct{ m *Manager }

func clonePortfolio(p models.Portfolio) *models.Portfolio {
	p.Holdings = append([]models.StoredHolding(nil), p.Holdings...)
	return &p
}

func (s portfolioStore) GetPortfolio(_ context.Context, userID, portfolioID string) (*models.Portfolio, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.portfolios[portfolioID]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("portfolio %s: %w", portfolioID, interfaces.ErrNotFound)
	}
	return clonePortfolio(p), nil
}

func (s portfolioStore) ListPortfolios(_ context.Context, userID string) ([]*models.Portfolio, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []*models.Portfolio
	for _, p := range s.m.portfolios {
		if p.UserID == userID {
			out = append(out, clonePortfolio(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s portfolioStore) SavePortfolio(_ context.Context, portfolio *models.Portfolio) error {
	if portfolio.ID == "" {
		return fmt.Errorf("portfolio id is required")
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.portfolios[portfolio.ID] = *clonePortfolio(*portfolio)
	return nil
}

func (s portfolioStore) DeletePortfolio(_ context.Context, userID, portfolioID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.portfolios[portfolioID]
	if !ok || p.UserID != userID {
		return fmt.Errorf("portfolio %s: %w", portfolioID, interfaces.ErrNotFound)
	}
	delete(s.m.portfolios, portfolioID)
	return nil
}

type fundStore struct{ m *Manager }

func (s fundStore) GetFund(_ context.Context, schemeCode string) (*models.FundMeta, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	f, ok := s.m.funds[schemeCode]
	if !ok {
		return nil, fmt.Errorf("fund %s: %w", schemeCode, interfaces.ErrNotFound)
	}
	return &f, nil
}

func (s fundStore) SaveFund(_ context.Context, fund *models.FundMeta) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.funds[fund.SchemeCode] = *fund
	return nil
}

var _ interfaces.StorageManager = (*Manager)(nil)
