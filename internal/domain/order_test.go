package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_DecodesBackendEncodings(t *testing.T) {
	cases := map[string]time.Time{
		`1700000000000`:               time.UnixMilli(1700000000000).UTC(),
		`"2024-03-05T10:00:00Z"`:      time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		`"2024-03-05"`:                time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		`"2024-03-05T10:00:00.000+0000"`: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, want.Equal(ts.Time), "%s: got %v", raw, ts.Time)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestOrder_JSON(t *testing.T) {
	var order Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"orderId":9,"userId":2,"date":"2024-01-31","state":"SHIPPED"}`), &order))
	assert.Equal(t, OrderStateShipped, order.State)
	assert.Equal(t, "1/31/2024", order.Date.DisplayDate())

	out, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"date":"2024-01-31T00:00:00Z"`)
}

func TestParseOrderState(t *testing.T) {
	state, err := ParseOrderState(" delivered ")
	require.NoError(t, err)
	assert.Equal(t, OrderStateDelivered, state)

	_, err = ParseOrderState("lost")
	assert.Error(t, err)
}

func TestProduct_NormalizedStocks(t *testing.T) {
	p := Product{SizeStocks: map[string]int{"M": 3, "XL": 1}}
	stocks := p.NormalizedStocks()
	assert.Len(t, stocks, len(Sizes))
	assert.Equal(t, 3, stocks["M"])
	assert.Equal(t, 0, stocks["6XL"])
	assert.Equal(t, 4, p.TotalStock())
}
