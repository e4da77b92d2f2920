package dashboard

import (
	"context"

	"nftdash/pkg/models"
)

// DataSource is everything the dashboard reads from the analytics API.
type DataSource interface {
	DetailsSource
	FetchTimeBased(ctx context.Context, interval models.Interval) (*models.TimeBasedResponse, error)
	FetchTopBuyersSellers(ctx context.Context, interval models.Interval) (*models.BuyerSellerResponse, error)
	FetchMarketplaceComparison(ctx context.Context, interval models.Interval) (*models.MarketplaceResponse, error)
	FetchTopResale(ctx context.Context, interval models.Interval) (*models.ResaleResponse, error)
	FetchTokenTransactions(ctx context.Context, tokenID int, interval models.Interval) (*models.TokenTransactionResponse, error)
	FetchTokenOwned(ctx context.Context, address string) (*models.TokenOwnedResponse, error)
}
