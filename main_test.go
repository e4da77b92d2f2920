package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nftdash/pkg/config"
	"nftdash/pkg/dashboard"
	"nftdash/pkg/models"

	"go.uber.org/zap"
)

type fakeProber struct {
	results []models.EndpointResult
	called  bool
}

func (f *fakeProber) Probe(ctx context.Context) []models.EndpointResult {
	f.called = true
	return f.results
}

func TestRunProbe(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name     string
		results  []models.EndpointResult
		expected int
		contains string
	}{
		{
			name: "all ok",
			results: []models.EndpointResult{
				{Path: "/time-based-data", Status: "ok", Latency: 12 * time.Millisecond},
				{Path: "/top-resale-token", Status: "empty", Latency: 3 * time.Millisecond},
			},
			expected: 0,
			contains: "All endpoints reachable.",
		},
		{
			name: "one failure",
			results: []models.EndpointResult{
				{Path: "/time-based-data", Status: "ok"},
				{Path: "/nft-details", Status: "error", HTTPStatus: 500, Error: "status 500"},
			},
			expected: 1,
			contains: "1 endpoint(s) failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			code := runProbe(context.Background(), &out, cfg, "/tmp/.nftdash.json", &fakeProber{results: tt.results}, false)
			if code != tt.expected {
				t.Errorf("runProbe() = %d; want %d", code, tt.expected)
			}
			if !strings.Contains(out.String(), tt.contains) {
				t.Errorf("output %q does not contain %q", out.String(), tt.contains)
			}
		})
	}
}

func TestRunProbeJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	p := &fakeProber{results: []models.EndpointResult{
		{Path: "/time-based-data", Status: "ok"},
		{Path: "/nft-details", Status: "error", Error: "connection refused"},
	}}

	var out bytes.Buffer
	code := runProbe(context.Background(), &out, cfg, "/tmp/.nftdash.json", p, true)
	if code != 1 {
		t.Errorf("runProbe() = %d; want 1", code)
	}

	var report models.ProbeReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if !report.ValidStructure {
		t.Error("expected valid structure")
	}
	if report.FailedCount != 1 {
		t.Errorf("FailedCount = %d; want 1", report.FailedCount)
	}
	if len(report.Endpoints) != 2 {
		t.Errorf("len(Endpoints) = %d; want 2", len(report.Endpoints))
	}
	if report.APIBaseURL != cfg.APIBaseURL {
		t.Errorf("APIBaseURL = %q", report.APIBaseURL)
	}
}

func TestRunProbeInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APIBaseURL = "not a url"
	cfg.RequestTimeoutSeconds = 0
	p := &fakeProber{}

	var out bytes.Buffer
	code := runProbe(context.Background(), &out, cfg, "bad.json", p, true)
	if code != 1 {
		t.Errorf("runProbe() = %d; want 1", code)
	}
	if p.called {
		t.Error("endpoints must not be probed when the config is invalid")
	}

	var report models.ProbeReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if report.ValidStructure {
		t.Error("expected invalid structure")
	}
	if len(report.ConfigErrors) != 2 {
		t.Errorf("ConfigErrors = %v; want 2 entries", report.ConfigErrors)
	}
}

func TestClientAndControllerWiring(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/time-based-data":
			_, _ = w.Write([]byte(`{"interval":0,"data":[{"total_volume":1234.5,"average_price":10,"transaction_count":3,"highest_price":99,"highest_price_token_id":"N/A"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = upstream.URL + "/api/v1"
	cfg.Locale = "en"
	cfg.RateLimitPerSecond = 0

	ctrl := newController(cfg, newClient(cfg, zap.NewNop(), nil), zap.NewNop(), nil)
	st, err := ctrl.Activate(context.Background(), dashboard.ViewTimeBased)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if st.Status != dashboard.StatusPopulated {
		t.Fatalf("Status = %q; want populated (message %q)", st.Status, st.Message)
	}
	if st.Summary.TotalVolume != "1,234 USD" {
		t.Errorf("TotalVolume = %q", st.Summary.TotalVolume)
	}
	if st.Summary.TransactionCount != "3 txns" {
		t.Errorf("TransactionCount = %q", st.Summary.TransactionCount)
	}
}
