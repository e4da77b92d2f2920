package dashboard

import (
	"context"

	"nftdash/pkg/models"

	"github.com/stretchr/testify/mock"
)

type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) FetchTimeBased(ctx context.Context, interval models.Interval) (*models.TimeBasedResponse, error) {
	args := m.Called(ctx, interval)
	resp, _ := args.Get(0).(*models.TimeBasedResponse)
	return resp, args.Error(1)
}

func (m *MockDataSource) FetchTopBuyersSellers(ctx context.Context, interval models.Interval) (*models.BuyerSellerResponse, error) {
	args := m.Called(ctx, interval)
	resp, _ := args.Get(0).(*models.BuyerSellerResponse)
	return resp, args.Error(1)
}

func (m *MockDataSource) FetchMarketplaceComparison(ctx context.Context, interval models.Interval) (*models.MarketplaceResponse, error) {
	args := m.Called(ctx, interval)
	resp, _ := args.Get(0).(*models.MarketplaceResponse)
	return resp, args.Error(1)
}

func (m *MockDataSource) FetchTopResale(ctx context.Context, interval models.Interval) (*models.ResaleResponse, error) {
	args := m.Called(ctx, interval)
	resp, _ := args.Get(0).(*models.ResaleResponse)
	return resp, args.Error(1)
}

func (m *MockDataSource) FetchTokenTransactions(ctx context.Context, tokenID int, interval models.Interval) (*models.TokenTransactionResponse, error) {
	args := m.Called(ctx, tokenID, interval)
	resp, _ := args.Get(0).(*models.TokenTransactionResponse)
	return resp, args.Error(1)
}

func (m *MockDataSource) FetchNFTDetails(ctx context.Context, tokenID string) (*models.NFTDetails, error) {
	args := m.Called(ctx, tokenID)
	resp, _ := args.Get(0).(*models.NFTDetails)
	return resp, args.Error(1)
}

func (m *MockDataSource) FetchTokenOwned(ctx context.Context, address string) (*models.TokenOwnedResponse, error) {
	args := m.Called(ctx, address)
	resp, _ := args.Get(0).(*models.TokenOwnedResponse)
	return resp, args.Error(1)
}
