package models

import "time"

// FundMeta is catalog metadata for a mutual-fund scheme.
type FundMeta struct {
	SchemeCode    string    `json:"scheme_code"`
	SchemeName    string    `json:"scheme_name"`
	Category      string    `json:"category"`
	FundHouse     string    `json:"fund_house"`
	SchemeType    string    `json:"scheme_type,omitempty"`
	LatestNav     float64   `json:"latest_nav,omitempty"`
	LatestNavDate time.Time `json:"latest_nav_date"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FundDetails is scheme metadata with its NAV history, most recent first.
type FundDetails struct {
	Meta    FundMeta   `json:"meta"`
	History []NavPoint `json:"history"`
}

// FundSummary is a search hit.
type FundSummary struct {
	SchemeCode string `json:"scheme_code"`
	SchemeName string `json:"scheme_name"`
}

// FundHistory is a scheme's metadata with NAV history for a chosen duration,
// oldest first for plotting.
type FundHistory struct {
	Meta     FundMeta   `json:"meta"`
	Duration string     `json:"duration"`
	History  []NavPoint `json:"history"`
	Error    string     `json:"error,omitempty"`
}
