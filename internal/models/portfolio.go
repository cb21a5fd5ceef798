package models

import "time"

// Portfolio is a named, user-owned collection of holdings.
type Portfolio struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Holdings    []StoredHolding `json:"holdings"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StoredHolding is a persisted holding. Fund metadata lives in FundMeta and is
// joined in when the portfolio is analysed.
type StoredHolding struct {
	ID         string    `json:"id"`
	SchemeCode string    `json:"scheme_code"`
	Units      float64   `json:"units"`
	BuyPrice   float64   `json:"buy_price"`
	BuyDate    time.Time `json:"buy_date"`
	AddedAt    time.Time `json:"added_at"`
}

// FindHolding returns the index of the holding with the given id, or -1.
func (p *Portfolio) FindHolding(id string) int {
	for i, h := range p.Holdings {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// User is a registered account.
type User struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}
