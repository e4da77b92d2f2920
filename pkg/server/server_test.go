package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nftdash/pkg/api"
	"nftdash/pkg/dashboard"
	"nftdash/pkg/observability"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnalyticsAPI serves canned responses for every upstream endpoint.
func fakeAnalyticsAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.PathTimeBased:
			_, _ = fmt.Fprint(w, `{"interval":0,"data":[{"total_volume":1000,"average_price":10,"transaction_count":100,"highest_price":90,"highest_price_token_id":"N/A"}]}`)
		case api.PathMarketplace:
			_, _ = fmt.Fprint(w, `{"interval":0,"data":[{"marketplace":"OpenSea","total_volume":10,"average_price":1,"transaction_count":3},{"marketplace":"Blur","total_volume":5,"average_price":1,"transaction_count":9}]}`)
		case api.PathNFTDetails:
			_, _ = fmt.Fprint(w, `{"image_url":"https://img/x.png","rarity_rank":12}`)
		case api.PathTokenTransaction:
			_, _ = fmt.Fprint(w, `{"token_id":"42","interval":0,"data":[{"sold_date":"2024-01-01","price":1,"buyer_address":"0xa"}]}`)
		case api.PathTokenOwned:
			_, _ = fmt.Fprint(w, `{"address":"x","token_ids":["42"]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	upstream := fakeAnalyticsAPI(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	client := api.NewClient(api.Options{BaseURL: upstream.URL, Timeout: 2 * time.Second, Metrics: metrics})
	ctrl := dashboard.NewController(client, dashboard.Options{Locale: "en", Metrics: metrics})
	return NewServer(ctrl, metrics, nil)
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", target, nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func TestHandleState(t *testing.T) {
	s := newTestServer(t)

	rr := get(s, "/api/state")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp stateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Views, len(dashboard.Views))
	assert.Equal(t, dashboard.ViewID(""), resp.Active)
}

func TestHandleActivate(t *testing.T) {
	s := newTestServer(t)

	rr := get(s, "/api/activate?view=time-based")
	require.Equal(t, http.StatusOK, rr.Code)

	var st dashboard.ViewState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, dashboard.StatusPopulated, st.Status)
	assert.Equal(t, "1,000 USD", st.Summary.TotalVolume)
	assert.Equal(t, dashboard.ViewTimeBased, s.ctrl.Active())

	rr = get(s, "/api/activate?view=nope")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleIntervalErrors(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, get(s, "/api/interval?view=resale&interval=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/interval?view=resale&interval=abc").Code)

	rr := get(s, "/api/interval?view=resale&interval=1")
	require.Equal(t, http.StatusOK, rr.Code)
	var st dashboard.ViewState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, dashboard.StatusErrored, st.Status)
}

func TestHandleMetric(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusConflict, get(s, "/api/marketplace/metric?metric=volume").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/marketplace/metric?metric=profit").Code)

	require.Equal(t, http.StatusOK, get(s, "/api/activate?view=marketplace").Code)

	rr := get(s, "/api/marketplace/metric?metric=trade_count")
	require.Equal(t, http.StatusOK, rr.Code)
	var st dashboard.ViewState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, dashboard.MetricTradeCount, st.Metric)
	assert.Equal(t, []float64{3, 9}, st.Marketplace.Series.Values)
}

func TestHandleToken(t *testing.T) {
	s := newTestServer(t)

	rr := get(s, "/api/token?id=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var errResp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, "Token ID must be a number between 0 and 9999", errResp.Error)

	rr = get(s, "/api/token?id=42")
	require.Equal(t, http.StatusOK, rr.Code)
	var st dashboard.ViewState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, dashboard.StatusPopulated, st.Status)
	assert.Equal(t, "12", st.Token.Details.RarityRank)
	assert.Equal(t, 1, st.Token.Chart.Len())
}

func TestHandleOwned(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, get(s, "/api/owned?address=0x12").Code)

	rr := get(s, "/api/owned?address=0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.Equal(t, http.StatusOK, rr.Code)
	var panel dashboard.OwnedPanel
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &panel))
	assert.Equal(t, []string{"42"}, panel.TokenIDs)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest("POST", "/api/state", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	_ = get(s, "/api/activate?view=time-based")

	rr := get(s, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `nftdash_view_fetch_total{outcome="populated",view="time-based"} 1`)
}

func TestHandleWS(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.listenToController(ctx)

	server := httptest.NewServer(s.mux)
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	// Read initial state
	var msg map[string]interface{}
	err = ws.ReadJSON(&msg)
	assert.NoError(t, err)
	assert.Equal(t, "initial", msg["type"])

	require.Equal(t, http.StatusOK, get(s, "/api/activate?view=marketplace").Code)

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev dashboard.Event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, dashboard.EventActiveChanged, ev.Type)
	assert.Equal(t, "marketplace", ev.Data)
}
