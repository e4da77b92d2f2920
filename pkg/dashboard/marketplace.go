package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"nftdash/pkg/models"
)

var (
	ErrCacheUninitialized = errors.New("marketplace data not loaded")
	ErrUnknownMetric      = errors.New("unknown marketplace metric")
)

// Metric selects which marketplace value a pie chart shows.
type Metric string

const (
	MetricVolume     Metric = "volume"
	MetricTradeCount Metric = "trade_count"
)

// ParseMetric accepts "volume" or "trade_count" ("trade" is an alias).
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(MetricVolume):
		return MetricVolume, nil
	case string(MetricTradeCount), "trade":
		return MetricTradeCount, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

var marketplaceColors = map[string]string{
	"OpenSea":     "#636efa",
	"LooksRare":   "#EF553B",
	"X2Y2":        "#00cc96",
	"Blur":        "#FFA15A",
	"Seaport":     "#FF6692",
	"Rarible":     "#B6E880",
	"0x Protocol": "#FF97FF",
}

// MarketplaceColor returns the fixed color of a marketplace.
func MarketplaceColor(name string) string {
	if c, ok := marketplaceColors[name]; ok {
		return c
	}
	return OtherColor
}

// MarketplacePoint is one cached marketplace row.
type MarketplacePoint struct {
	Label        string  `json:"label"`
	Volume       float64 `json:"volume"`
	TradeCount   int64   `json:"trade_count"`
	AveragePrice float64 `json:"average_price"`
	Color        string  `json:"color"`
}

// NewMarketplacePoints converts API rows, keeping their order.
func NewMarketplacePoints(rows []models.MarketplaceShare) []MarketplacePoint {
	points := make([]MarketplacePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, MarketplacePoint{
			Label:        row.Marketplace,
			Volume:       row.TotalVolume,
			TradeCount:   row.TransactionCount,
			AveragePrice: row.AveragePrice,
			Color:        MarketplaceColor(row.Marketplace),
		})
	}
	return points
}

// MarketplaceSeriesCache keeps the last marketplace dataset so the metric can
// be switched without another request.
type MarketplaceSeriesCache struct {
	mu     sync.RWMutex
	points []MarketplacePoint
	loaded bool
	msgs   Messages
}

// NewMarketplaceSeriesCache creates an empty cache using msgs for chart titles.
func NewMarketplaceSeriesCache(msgs Messages) *MarketplaceSeriesCache {
	return &MarketplaceSeriesCache{msgs: msgs}
}

// Set replaces the cached dataset.
func (c *MarketplaceSeriesCache) Set(points []MarketplacePoint) {
	cp := make([]MarketplacePoint, len(points))
	copy(cp, points)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.points = cp
	c.loaded = true
}

// Clear drops the cached dataset.
func (c *MarketplaceSeriesCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points = nil
	c.loaded = false
}

// Loaded reports whether Project can succeed.
func (c *MarketplaceSeriesCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Points returns a copy of the cached dataset.
func (c *MarketplaceSeriesCache) Points() []MarketplacePoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]MarketplacePoint, len(c.points))
	copy(cp, c.points)
	return cp
}

// Project builds the pie chart for metric from the cached dataset.
func (c *MarketplaceSeriesCache) Project(metric Metric) (*ChartDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, ErrCacheUninitialized
	}
	return ProjectMarketplace(c.points, metric, c.msgs)
}

// ProjectMarketplace builds the pie chart for metric from points.
func ProjectMarketplace(points []MarketplacePoint, metric Metric, msgs Messages) (*ChartDescriptor, error) {
	var title, valueName string
	switch metric {
	case MetricVolume:
		title, valueName = msgs.VolumeComparison, msgs.VolumeUSD
	case MetricTradeCount:
		title, valueName = msgs.TradeComparison, msgs.TradeCount
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}

	n := len(points)
	series := Series{
		Name:   valueName,
		Labels: make([]string, n),
		Values: make([]float64, n),
		Colors: make([]string, n),
	}
	for i, p := range points {
		series.Labels[i] = p.Label
		series.Colors[i] = p.Color
		if metric == MetricVolume {
			series.Values[i] = p.Volume
		} else {
			series.Values[i] = float64(p.TradeCount)
		}
	}

	return &ChartDescriptor{Kind: ChartPie, Title: title, Series: series}, nil
}
