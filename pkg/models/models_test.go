package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefUnmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected Ref
		present  bool
	}{
		{`"42"`, "42", true},
		{`42`, "42", true},
		{`"N/A"`, "N/A", false},
		{`null`, "", false},
	}

	for _, tt := range tests {
		var r Ref
		if err := json.Unmarshal([]byte(tt.input), &r); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.input, err)
			continue
		}
		if r != tt.expected {
			t.Errorf("Unmarshal(%s) = %q; want %q", tt.input, r, tt.expected)
		}
		if r.Present() != tt.present {
			t.Errorf("Present(%s) = %v; want %v", tt.input, r.Present(), tt.present)
		}
	}

	var r Ref
	assert.Error(t, json.Unmarshal([]byte(`true`), &r))
	assert.Equal(t, NotAvailable, Ref("").String())
}

func TestResaleResponseDecodesNumericIDs(t *testing.T) {
	body := `{"interval":1,"data":[{"token_id":7,"total_profit":12.5,"seller":"0xabc","resale_count":2,"average_profit":6.25}]}`
	var resp ResaleResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, IntervalLast30Days, resp.Interval)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, Ref("7"), resp.Data[0].TokenID)
	assert.Equal(t, int64(2), resp.Data[0].ResaleCount)
}

func TestParseInterval(t *testing.T) {
	i, err := ParseInterval("3")
	require.NoError(t, err)
	assert.Equal(t, IntervalAllTime, i)
	assert.Equal(t, "all", i.Label())
	assert.Equal(t, "interval 9", Interval(9).Label())

	_, err = ParseInterval("-1")
	assert.Error(t, err)
	_, err = ParseInterval("x")
	assert.Error(t, err)
}
