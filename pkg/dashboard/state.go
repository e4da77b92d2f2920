package dashboard

import (
	"fmt"
	"strings"

	"nftdash/pkg/format"
	"nftdash/pkg/models"
)

// ViewID names one of the dashboard views.
type ViewID string

const (
	ViewTimeBased     ViewID = "time-based"
	ViewBuyersSellers ViewID = "buyers-sellers"
	ViewMarketplace   ViewID = "marketplace"
	ViewResale        ViewID = "resale"
	ViewToken         ViewID = "token"
)

// Views lists every view in display order.
var Views = []ViewID{ViewTimeBased, ViewBuyersSellers, ViewMarketplace, ViewResale, ViewToken}

// Valid reports whether v is a known view.
func (v ViewID) Valid() bool {
	return v.Index() >= 0
}

// Index returns the position of v in Views, or -1.
func (v ViewID) Index() int {
	for i, id := range Views {
		if id == v {
			return i
		}
	}
	return -1
}

// ParseView accepts a view id or its 1-based position.
func ParseView(s string) (ViewID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '1' && int(s[0]-'0') <= len(Views) {
		return Views[s[0]-'1'], nil
	}
	if v := ViewID(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Status is the lifecycle state of a view.
type Status string

const (
	StatusInactive  Status = "inactive"
	StatusLoading   Status = "loading"
	StatusPopulated Status = "populated"
	StatusEmpty     Status = "empty"
	StatusErrored   Status = "errored"
)

// Settled reports whether no fetch is outstanding.
func (s Status) Settled() bool {
	return s != StatusLoading
}

// TimeSummary holds the display strings of the time-based view.
type TimeSummary struct {
	TotalVolume         string   `json:"total_volume"`
	AveragePrice        string   `json:"average_price"`
	TransactionCount    string   `json:"transaction_count"`
	HighestPrice        string   `json:"highest_price"`
	HighestPriceTokenID string   `json:"highest_price_token_id"`
	Details             *Details `json:"details,omitempty"`
	Enrichment          Outcome  `json:"enrichment,omitempty"`
}

func emptySummary() *TimeSummary {
	return &TimeSummary{
		TotalVolume:         format.Placeholder,
		AveragePrice:        format.Placeholder,
		TransactionCount:    format.Placeholder,
		HighestPrice:        format.Placeholder,
		HighestPriceTokenID: format.Placeholder,
	}
}

// TokenPanel is the token-transaction view payload.
type TokenPanel struct {
	TokenID      int                       `json:"token_id"`
	Details      Details                   `json:"details"`
	Enrichment   Outcome                   `json:"enrichment"`
	Chart        *ChartDescriptor          `json:"chart,omitempty"`
	Transactions []models.TokenTransaction `json:"transactions,omitempty"`
}

// OwnedPanel lists the tokens held by a wallet.
type OwnedPanel struct {
	Address  string   `json:"address"`
	Status   Status   `json:"status"`
	Message  string   `json:"message,omitempty"`
	TokenIDs []string `json:"token_ids,omitempty"`
}

// ViewState is an immutable snapshot of one view. Only the payload fields
// that belong to View are set.
type ViewState struct {
	View       ViewID          `json:"view"`
	Status     Status          `json:"status"`
	Interval   models.Interval `json:"interval"`
	Message    string          `json:"message,omitempty"`
	Generation uint64          `json:"generation"`

	Summary *TimeSummary `json:"summary,omitempty"`

	Buyers     *ChartDescriptor       `json:"buyers,omitempty"`
	Sellers    *ChartDescriptor       `json:"sellers,omitempty"`
	TopBuyers  []models.AddressVolume `json:"top_buyers,omitempty"`
	TopSellers []models.AddressVolume `json:"top_sellers,omitempty"`

	Marketplace       *ChartDescriptor   `json:"marketplace,omitempty"`
	Metric            Metric             `json:"metric,omitempty"`
	MarketplacePoints []MarketplacePoint `json:"marketplace_points,omitempty"`

	Resale []models.ResaleEntry `json:"resale,omitempty"`

	Token *TokenPanel `json:"token,omitempty"`
	Owned *OwnedPanel `json:"owned,omitempty"`
}
