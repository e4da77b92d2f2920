package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nftdash/pkg/config"
	"nftdash/pkg/dashboard"
	"nftdash/pkg/format"
	"nftdash/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	ctrl := dashboard.NewController(nil, dashboard.Options{Locale: "en"})
	cfg := config.DefaultConfig()
	cfg.Locale = "en"
	m := initialModel(context.Background(), ctrl, cfg, "/tmp/.nftdash.json")
	t.Cleanup(func() { ctrl.Unsubscribe(m.sub) })
	return m
}

func TestNextView(t *testing.T) {
	tests := []struct {
		current  dashboard.ViewID
		delta    int
		expected dashboard.ViewID
	}{
		{dashboard.ViewTimeBased, 1, dashboard.ViewBuyersSellers},
		{dashboard.ViewToken, 1, dashboard.ViewTimeBased},
		{dashboard.ViewTimeBased, -1, dashboard.ViewToken},
		{dashboard.ViewResale, -2, dashboard.ViewBuyersSellers},
		{"", 1, dashboard.ViewBuyersSellers},
	}

	for _, tt := range tests {
		if got := nextView(tt.current, tt.delta); got != tt.expected {
			t.Errorf("nextView(%q, %d) = %q; want %q", tt.current, tt.delta, got, tt.expected)
		}
	}
}

func TestShiftInterval(t *testing.T) {
	tests := []struct {
		current  models.Interval
		delta    int
		count    int
		expected models.Interval
	}{
		{0, 1, 4, 1},
		{3, 1, 4, 0},
		{0, -1, 4, 3},
		{2, 1, 0, 2},
	}

	for _, tt := range tests {
		if got := shiftInterval(tt.current, tt.delta, tt.count); got != tt.expected {
			t.Errorf("shiftInterval(%d, %d, %d) = %d; want %d", tt.current, tt.delta, tt.count, got, tt.expected)
		}
	}
}

func TestBarLength(t *testing.T) {
	assert.Equal(t, 10, barLength(100, 100, 10))
	assert.Equal(t, 5, barLength(50, 100, 10))
	assert.Equal(t, 1, barLength(0.01, 100, 10))
	assert.Equal(t, 0, barLength(0, 100, 10))
	assert.Equal(t, 0, barLength(5, 0, 10))
	assert.Equal(t, 10, barLength(200, 100, 10))
}

func TestOtherMetric(t *testing.T) {
	assert.Equal(t, dashboard.MetricTradeCount, otherMetric(dashboard.MetricVolume))
	assert.Equal(t, dashboard.MetricVolume, otherMetric(dashboard.MetricTradeCount))
	assert.Equal(t, dashboard.MetricTradeCount, otherMetric(""))
}

func TestCopyTargets(t *testing.T) {
	st := dashboard.ViewState{
		View:       dashboard.ViewBuyersSellers,
		TopBuyers:  []models.AddressVolume{{Address: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}},
		TopSellers: []models.AddressVolume{{Address: "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"}},
	}
	targets := copyTargets(st)
	require.Len(t, targets, 2)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", targets[0])
	assert.Equal(t, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", targets[1])

	resale := dashboard.ViewState{
		View:   dashboard.ViewResale,
		Resale: []models.ResaleEntry{{TokenID: "1", SellerAddress: "N/A"}},
	}
	assert.Equal(t, []string{"N/A"}, copyTargets(resale))

	assert.Empty(t, copyTargets(dashboard.ViewState{View: dashboard.ViewTimeBased}))
}

func TestImageTarget(t *testing.T) {
	st := dashboard.ViewState{
		View: dashboard.ViewResale,
		Resale: []models.ResaleEntry{
			{TokenID: "1", ImageURL: "https://img.example/1.png"},
			{TokenID: "2", ImageURL: "assets/placeholder.jpeg"},
		},
	}
	assert.Equal(t, "https://img.example/1.png", imageTarget(st, 0))
	assert.Equal(t, "", imageTarget(st, 1))
	assert.Equal(t, "", imageTarget(st, 5))

	token := dashboard.ViewState{
		View:  dashboard.ViewToken,
		Token: &dashboard.TokenPanel{TokenID: 42, Details: dashboard.Details{ImageURL: "http://img.example/42.png"}},
	}
	assert.Equal(t, "http://img.example/42.png", imageTarget(token, 0))
}

func TestCursorOffset(t *testing.T) {
	assert.Equal(t, 0, cursorOffset(0, 10, 20))
	assert.Equal(t, 10, cursorOffset(2, 10, 20))
	assert.Equal(t, 5, cursorOffset(4, 0, 20))
}

func TestRenderBars(t *testing.T) {
	desc := &dashboard.ChartDescriptor{
		Kind:  dashboard.ChartBar,
		Title: "Top Buyers",
		Series: dashboard.Series{
			Labels: []string{"0xaaaa...1111", "0xbbbb...2222"},
			Values: []float64{200, 100},
			Colors: []string{dashboard.BarColor},
		},
	}
	out := renderBars(desc, 60, format.NewFormatter("en").Currency)
	assert.Contains(t, out, "Top Buyers")
	assert.Contains(t, out, "0xaaaa...1111")
	assert.Contains(t, out, "200 USD")
	assert.Equal(t, 3, len(strings.Split(out, "\n")))

	assert.Equal(t, "", renderBars(nil, 60, format.NewFormatter("en").Currency))
}

func TestRenderShares(t *testing.T) {
	f := format.NewFormatter("en")
	desc := &dashboard.ChartDescriptor{
		Kind:  dashboard.ChartPie,
		Title: "Volume Comparison",
		Series: dashboard.Series{
			Labels: []string{"OpenSea", "Blur"},
			Values: []float64{750, 250},
		},
	}
	out := renderShares(desc, 80, f, f.Currency)
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "Blur")
}

func TestResaleContent(t *testing.T) {
	msgs := dashboard.MessagesFor("en")
	entries := []models.ResaleEntry{
		{TokenID: "7", TotalProfit: 1500.9, ResaleCount: 3, AverageProfit: 500.3, SellerAddress: "N/A", RarityRank: "12"},
		{TokenID: "8", Degraded: true, RarityRank: "N/A"},
	}
	out := resaleContent(entries, 1, msgs, format.NewFormatter("en"))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2*resaleCardHeight)
	assert.Contains(t, out, "Token ID 7")
	assert.Contains(t, out, "1,500 USD")
	assert.Contains(t, out, "> #2")
}

func TestInitialModel(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, dashboard.ViewTimeBased, m.active)
	assert.Len(t, m.states, len(dashboard.Views))
	assert.Equal(t, "No data", m.msgs.NoData)
	assert.NotNil(t, m.Init())
}

func TestUpdateAppliesEvents(t *testing.T) {
	m := newTestModel(t)

	st := dashboard.ViewState{
		View:   dashboard.ViewTimeBased,
		Status: dashboard.StatusPopulated,
		Summary: &dashboard.TimeSummary{
			TotalVolume:         "1,000 USD",
			AveragePrice:        "100 USD",
			TransactionCount:    "10 txns",
			HighestPrice:        "500 USD",
			HighestPriceTokenID: "42",
		},
	}
	next, cmd := m.Update(dashboard.Event{Type: dashboard.EventViewUpdated, Data: st})
	assert.NotNil(t, cmd)
	m = next.(model)
	assert.Equal(t, dashboard.StatusPopulated, m.states[dashboard.ViewTimeBased].Status)
	assert.False(t, m.lastUpdate.IsZero())
	assert.Contains(t, m.View(), "1,000 USD")

	next, _ = m.Update(dashboard.Event{Type: dashboard.EventActiveChanged, Data: dashboard.ViewResale})
	m = next.(model)
	assert.Equal(t, dashboard.ViewResale, m.active)
}

func TestUpdateKeys(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	m = next.(model)
	assert.Equal(t, dashboard.ViewMarketplace, m.active)
	assert.NotNil(t, cmd)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.Equal(t, dashboard.ViewResale, m.active)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	m = next.(model)
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	assert.False(t, m.showHelp)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = next.(model)
	assert.True(t, m.enteringToken)
	assert.Contains(t, m.View(), "Token Lookup")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	assert.False(t, m.enteringToken)

	// wallet prompt is only available on the token view
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("w")})
	m = next.(model)
	assert.False(t, m.enteringOwned)
}

func TestUpdateActionErrors(t *testing.T) {
	m := newTestModel(t)

	vErr := &dashboard.ValidationError{Input: "abc", Message: m.msgs.InvalidTokenID, Err: dashboard.ErrInvalidTokenID}
	next, cmd := m.Update(actionDoneMsg{action: "token", err: vErr})
	m = next.(model)
	assert.Equal(t, m.msgs.InvalidTokenID, m.statusMessage)
	assert.NotNil(t, cmd)

	next, _ = m.Update(clearStatusMsg{})
	m = next.(model)
	assert.Empty(t, m.statusMessage)

	next, _ = m.Update(actionDoneMsg{action: "metric", err: dashboard.ErrCacheUninitialized})
	m = next.(model)
	assert.Equal(t, m.msgs.NoData, m.statusMessage)
}

func TestOwnedTokens(t *testing.T) {
	st := dashboard.ViewState{
		View:  dashboard.ViewToken,
		Owned: &dashboard.OwnedPanel{Status: dashboard.StatusPopulated, TokenIDs: []string{"7", "42"}},
	}
	assert.Equal(t, []string{"7", "42"}, ownedTokens(st))

	st.Owned.Status = dashboard.StatusErrored
	assert.Nil(t, ownedTokens(st))

	assert.Nil(t, ownedTokens(dashboard.ViewState{View: dashboard.ViewResale}))
}

func TestOwnedTokenSelection(t *testing.T) {
	m := newTestModel(t)
	m.active = dashboard.ViewToken
	m.states[dashboard.ViewToken] = dashboard.ViewState{
		View:   dashboard.ViewToken,
		Status: dashboard.StatusInactive,
		Owned:  &dashboard.OwnedPanel{Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", Status: dashboard.StatusPopulated, TokenIDs: []string{"7", "42"}},
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(model)
	assert.Equal(t, 1, m.ownedCursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(model)
	assert.Equal(t, 1, m.ownedCursor)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "42")
}

// downSource fails every request.
type downSource struct{}

var errDown = errors.New("down")

func (downSource) FetchNFTDetails(context.Context, string) (*models.NFTDetails, error) {
	return nil, errDown
}
func (downSource) FetchTimeBased(context.Context, models.Interval) (*models.TimeBasedResponse, error) {
	return nil, errDown
}
func (downSource) FetchTopBuyersSellers(context.Context, models.Interval) (*models.BuyerSellerResponse, error) {
	return nil, errDown
}
func (downSource) FetchMarketplaceComparison(context.Context, models.Interval) (*models.MarketplaceResponse, error) {
	return nil, errDown
}
func (downSource) FetchTopResale(context.Context, models.Interval) (*models.ResaleResponse, error) {
	return nil, errDown
}
func (downSource) FetchTokenTransactions(context.Context, int, models.Interval) (*models.TokenTransactionResponse, error) {
	return nil, errDown
}
func (downSource) FetchTokenOwned(context.Context, string) (*models.TokenOwnedResponse, error) {
	return nil, errDown
}

func TestTokenPromptTrimsInput(t *testing.T) {
	ctrl := dashboard.NewController(downSource{}, dashboard.Options{Locale: "en"})
	cfg := config.DefaultConfig()
	cfg.Locale = "en"
	m := initialModel(context.Background(), ctrl, cfg, "/tmp/.nftdash.json")
	t.Cleanup(func() { ctrl.Unsubscribe(m.sub) })

	m.active = dashboard.ViewToken
	m.enteringToken = true
	m.tokenInput.SetValue(" 7 ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	assert.False(t, m.enteringToken)
	require.NotNil(t, cmd)

	done, ok := cmd().(actionDoneMsg)
	require.True(t, ok)
	if done.err != nil {
		t.Errorf("lookup of padded input returned %v; want the trimmed id accepted", done.err)
	}
	st := ctrl.Snapshot(dashboard.ViewToken)
	assert.NotEqual(t, m.msgs.InvalidTokenID, st.Message)
	assert.Equal(t, dashboard.StatusErrored, st.Status)
}
