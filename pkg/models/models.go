package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// NotAvailable is the sentinel the API and the dashboard use for missing values.
const NotAvailable = "N/A"

// Interval selects a server-defined aggregation window.
type Interval int

const (
	IntervalLast7Days Interval = iota
	IntervalLast30Days
	IntervalLastYear
	IntervalAllTime
)

var intervalLabels = map[Interval]string{
	IntervalLast7Days:  "7d",
	IntervalLast30Days: "30d",
	IntervalLastYear:   "1y",
	IntervalAllTime:    "all",
}

// Label returns a short display label for the interval.
func (i Interval) Label() string {
	if l, ok := intervalLabels[i]; ok {
		return l
	}
	return fmt.Sprintf("interval %d", int(i))
}

// Valid reports whether the interval can be sent to the backend.
func (i Interval) Valid() bool {
	return i >= 0
}

// Ref is a token identifier or rank that the API may encode as a JSON string or number.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ref must be a string or number: %w", err)
	}
	*r = Ref(n.String())
	return nil
}

// String returns the reference, or NotAvailable when empty.
func (r Ref) String() string {
	if r == "" {
		return NotAvailable
	}
	return string(r)
}

// Present reports whether the reference names a real token.
func (r Ref) Present() bool {
	return r != "" && r != NotAvailable
}

// AggregateSnapshot is one row of the time-based summary.
type AggregateSnapshot struct {
	TotalVolume         float64 `json:"total_volume"`
	AveragePrice        float64 `json:"average_price"`
	TransactionCount    int64   `json:"transaction_count"`
	HighestPrice        float64 `json:"highest_price"`
	HighestPriceTokenID Ref     `json:"highest_price_token_id"`
}

// TimeBasedResponse is the body of /time-based-data.
type TimeBasedResponse struct {
	Interval Interval            `json:"interval"`
	Data     []AggregateSnapshot `json:"data"`
}

// AddressVolume is one ranked buyer or seller.
type AddressVolume struct {
	Address          string  `json:"address"`
	TotalVolume      float64 `json:"total_volume"`
	TransactionCount int64   `json:"transaction_count"`
}

// BuyerSellerResponse is the body of /top-buyers-sellers.
type BuyerSellerResponse struct {
	Interval   Interval        `json:"interval"`
	TopBuyers  []AddressVolume `json:"top_buyers"`
	TopSellers []AddressVolume `json:"top_sellers"`
}

// MarketplaceShare holds aggregates for a single marketplace.
type MarketplaceShare struct {
	Marketplace      string  `json:"marketplace"`
	TotalVolume      float64 `json:"total_volume"`
	AveragePrice     float64 `json:"average_price"`
	TransactionCount int64   `json:"transaction_count"`
}

// MarketplaceResponse is the body of /marketplace-comparison.
type MarketplaceResponse struct {
	Interval Interval           `json:"interval"`
	Data     []MarketplaceShare `json:"data"`
}

// ResaleRecord is one row of /top-resale-token as sent by the API.
type ResaleRecord struct {
	TokenID       Ref     `json:"token_id"`
	TotalProfit   float64 `json:"total_profit"`
	Seller        string  `json:"seller"`
	ResaleCount   int64   `json:"resale_count"`
	AverageProfit float64 `json:"average_profit"`
}

// ResaleResponse is the body of /top-resale-token.
type ResaleResponse struct {
	Interval Interval       `json:"interval"`
	Data     []ResaleRecord `json:"data"`
}

// ResaleEntry is a resale record merged with its NFT details.
type ResaleEntry struct {
	TokenID       string  `json:"token_id"`
	TotalProfit   float64 `json:"total_profit"`
	SellerAddress string  `json:"seller_address"`
	ResaleCount   int64   `json:"resale_count"`
	AverageProfit float64 `json:"average_profit"`
	ImageURL      string  `json:"image_url"`
	RarityRank    string  `json:"rarity_rank"`
	Degraded      bool    `json:"degraded"`
}

// TokenTransaction is a single sale of one token.
type TokenTransaction struct {
	SoldDate        string  `json:"sold_date"`
	Price           float64 `json:"price"`
	BuyerAddress    string  `json:"buyer_address"`
	TransactionHash string  `json:"transaction_hash,omitempty"`
}

// TokenTransactionResponse is the body of /token-transaction.
type TokenTransactionResponse struct {
	TokenID  Ref                `json:"token_id"`
	Interval Interval           `json:"interval"`
	Data     []TokenTransaction `json:"data"`
}

// NFTDetails is the enrichment metadata for one token.
type NFTDetails struct {
	ImageURL   string `json:"image_url"`
	RarityRank Ref    `json:"rarity_rank"`
}

// TokenOwnedResponse is the body of /token-owned.
type TokenOwnedResponse struct {
	Address  string `json:"address"`
	TokenIDs []Ref  `json:"token_ids"`
}

// EndpointResult holds the probe result for a single API endpoint.
type EndpointResult struct {
	Path       string        `json:"path"`
	Status     string        `json:"status"` // "ok", "empty" or "error"
	HTTPStatus int           `json:"http_status,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
	Error      string        `json:"error,omitempty"`
}

// ProbeReport holds the results of the configuration test.
type ProbeReport struct {
	ConfigPath     string           `json:"config_path"`
	APIBaseURL     string           `json:"api_base_url"`
	ValidStructure bool             `json:"valid_structure"`
	ConfigErrors   []string         `json:"config_errors,omitempty"`
	Endpoints      []EndpointResult `json:"endpoints,omitempty"`
	FailedCount    int              `json:"failed_count"`
}

// ParseInterval parses a decimal interval selector.
func ParseInterval(s string) (Interval, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid interval %q: must be non-negative", s)
	}
	return Interval(n), nil
}
