package dashboard

import (
	"context"
	"strconv"
	"strings"

	"nftdash/pkg/format"
	"nftdash/pkg/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel NFT detail lookups.
const DefaultConcurrency = 8

// Fetchers turns API responses into view states. Each method performs one
// interval scoped request and never returns an error: failures become
// StatusErrored with a localized message.
type Fetchers struct {
	source      DataSource
	resolver    *Resolver
	format      *format.Formatter
	msgs        Messages
	concurrency int
	logger      *zap.Logger
}

func (f *Fetchers) errored(view ViewID, msg string, err error) ViewState {
	f.logger.Warn("view fetch failed", zap.String("view", string(view)), zap.Error(err))
	return ViewState{Status: StatusErrored, Message: msg}
}

// TimeBased fetches the aggregate summary and enriches the most expensive token.
func (f *Fetchers) TimeBased(ctx context.Context, interval models.Interval) ViewState {
	resp, err := f.source.FetchTimeBased(ctx, interval)
	if err != nil {
		st := f.errored(ViewTimeBased, f.msgs.TimeBasedError, err)
		st.Summary = emptySummary()
		return st
	}
	if resp == nil || len(resp.Data) == 0 {
		return ViewState{Status: StatusEmpty, Message: f.msgs.NoData, Summary: emptySummary()}
	}

	row := resp.Data[0]
	summary := &TimeSummary{
		TotalVolume:         f.format.Currency(row.TotalVolume),
		AveragePrice:        f.format.Currency(row.AveragePrice),
		TransactionCount:    f.format.Count(row.TransactionCount),
		HighestPrice:        f.format.Currency(row.HighestPrice),
		HighestPriceTokenID: row.HighestPriceTokenID.String(),
	}
	if row.HighestPriceTokenID.Present() {
		res := f.resolver.Resolve(ctx, string(row.HighestPriceTokenID))
		summary.Details = &res.Details
		summary.Enrichment = res.Outcome
	}
	return ViewState{Status: StatusPopulated, Summary: summary}
}

func (f *Fetchers) addressChart(rows []models.AddressVolume, title, xTitle string) *ChartDescriptor {
	n := len(rows)
	series := Series{
		Name:   title,
		Labels: make([]string, n),
		Values: make([]float64, n),
		Hover:  make([]string, n),
		Colors: []string{BarColor},
	}
	for i, row := range rows {
		series.Labels[i] = format.Address(row.Address)
		series.Values[i] = row.TotalVolume
		series.Hover[i] = strings.TrimSpace(row.Address)
	}
	return &ChartDescriptor{
		Kind:   ChartBar,
		Title:  title,
		XTitle: xTitle,
		YTitle: f.msgs.TotalVolume,
		Series: series,
	}
}

// BuyersSellers fetches both rankings. A missing list is an empty series.
func (f *Fetchers) BuyersSellers(ctx context.Context, interval models.Interval) ViewState {
	resp, err := f.source.FetchTopBuyersSellers(ctx, interval)
	if err != nil {
		return f.errored(ViewBuyersSellers, f.msgs.BuyersSellersError, err)
	}
	if resp == nil || (len(resp.TopBuyers) == 0 && len(resp.TopSellers) == 0) {
		return ViewState{Status: StatusEmpty, Message: f.msgs.NoData}
	}
	return ViewState{
		Status:     StatusPopulated,
		Buyers:     f.addressChart(resp.TopBuyers, f.msgs.TopBuyers, f.msgs.BuyerAddress),
		Sellers:    f.addressChart(resp.TopSellers, f.msgs.TopSellers, f.msgs.SellerAddress),
		TopBuyers:  resp.TopBuyers,
		TopSellers: resp.TopSellers,
	}
}

// Marketplace fetches per-marketplace aggregates and projects the volume
// chart. The returned points are left for the controller to cache.
func (f *Fetchers) Marketplace(ctx context.Context, interval models.Interval) ViewState {
	resp, err := f.source.FetchMarketplaceComparison(ctx, interval)
	if err != nil {
		return f.errored(ViewMarketplace, f.msgs.MarketplaceError, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return ViewState{Status: StatusEmpty, Message: f.msgs.NoData}
	}

	points := NewMarketplacePoints(resp.Data)
	chart, err := ProjectMarketplace(points, MetricVolume, f.msgs)
	if err != nil {
		return f.errored(ViewMarketplace, f.msgs.MarketplaceError, err)
	}
	return ViewState{
		Status:            StatusPopulated,
		Marketplace:       chart,
		Metric:            MetricVolume,
		MarketplacePoints: points,
	}
}

// Resale fetches the ranking and enriches every entry concurrently. The view
// is only populated after all lookups settle; entry order is preserved.
func (f *Fetchers) Resale(ctx context.Context, interval models.Interval) ViewState {
	resp, err := f.source.FetchTopResale(ctx, interval)
	if err != nil {
		return f.errored(ViewResale, f.msgs.ResaleError, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return ViewState{Status: StatusEmpty, Message: f.msgs.NoData}
	}

	entries := make([]models.ResaleEntry, len(resp.Data))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, row := range resp.Data {
		i, row := i, row
		g.Go(func() error {
			seller := strings.TrimSpace(row.Seller)
			if seller == "" {
				seller = models.NotAvailable
			}
			res := f.resolver.Resolve(gctx, string(row.TokenID))
			entries[i] = models.ResaleEntry{
				TokenID:       row.TokenID.String(),
				TotalProfit:   row.TotalProfit,
				SellerAddress: seller,
				ResaleCount:   row.ResaleCount,
				AverageProfit: row.AverageProfit,
				ImageURL:      res.Details.ImageURL,
				RarityRank:    res.Details.RarityRank,
				Degraded:      res.Outcome == OutcomeDegraded,
			}
			// Lookups never fail the group.
			return nil
		})
	}
	_ = g.Wait()

	return ViewState{Status: StatusPopulated, Resale: entries}
}

// Token resolves the header details for tokenID and fetches its transactions.
// The header is kept even when the history is empty or fails.
func (f *Fetchers) Token(ctx context.Context, tokenID int, interval models.Interval) ViewState {
	res := f.resolver.Resolve(ctx, strconv.Itoa(tokenID))
	panel := &TokenPanel{TokenID: tokenID, Details: res.Details, Enrichment: res.Outcome}

	resp, err := f.source.FetchTokenTransactions(ctx, tokenID, interval)
	if err != nil {
		st := f.errored(ViewToken, f.msgs.TokenError, err)
		st.Token = panel
		return st
	}
	if resp == nil || len(resp.Data) == 0 {
		return ViewState{Status: StatusEmpty, Message: f.msgs.NoData, Token: panel}
	}

	n := len(resp.Data)
	series := Series{
		Name:   strconv.Itoa(tokenID),
		Labels: make([]string, n),
		Values: make([]float64, n),
		Hover:  make([]string, n),
		Colors: []string{LineColor},
	}
	for i, tx := range resp.Data {
		series.Labels[i] = tx.SoldDate
		series.Values[i] = tx.Price
		series.Hover[i] = tx.BuyerAddress
	}
	panel.Chart = &ChartDescriptor{
		Kind:   ChartLine,
		Title:  f.msgs.tokenTitle(tokenID),
		XTitle: f.msgs.SoldDate,
		YTitle: f.msgs.PriceUSD,
		Series: series,
	}
	panel.Transactions = resp.Data
	return ViewState{Status: StatusPopulated, Token: panel}
}

// Owned lists the tokens held by an already validated address.
func (f *Fetchers) Owned(ctx context.Context, address string) *OwnedPanel {
	panel := &OwnedPanel{Address: address}
	resp, err := f.source.FetchTokenOwned(ctx, address)
	if err != nil {
		f.logger.Warn("owned token lookup failed", zap.String("address", address), zap.Error(err))
		panel.Status = StatusErrored
		panel.Message = f.msgs.OwnedError
		return panel
	}
	if resp != nil {
		for _, id := range resp.TokenIDs {
			if id.Present() {
				panel.TokenIDs = append(panel.TokenIDs, string(id))
			}
		}
	}
	if len(panel.TokenIDs) == 0 {
		panel.Status = StatusEmpty
		panel.Message = f.msgs.NoOwnedTokens
		return panel
	}
	panel.Status = StatusPopulated
	return panel
}
