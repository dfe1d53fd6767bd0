package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OrderState enumerates fulfilment states of a placed order.
type OrderState string

const (
	OrderStatePending    OrderState = "PENDING"
	OrderStateProcessing OrderState = "PROCESSING"
	OrderStateShipped    OrderState = "SHIPPED"
	OrderStateDelivered  OrderState = "DELIVERED"
	OrderStateCancelled  OrderState = "CANCELLED"
)

// OrderStates lists every state in workflow order.
var OrderStates = []OrderState{
	OrderStatePending,
	OrderStateProcessing,
	OrderStateShipped,
	OrderStateDelivered,
	OrderStateCancelled,
}

// ParseOrderState accepts any casing of a known state.
func ParseOrderState(s string) (OrderState, error) {
	for _, state := range OrderStates {
		if strings.EqualFold(string(state), strings.TrimSpace(s)) {
			return state, nil
		}
	}
	return "", fmt.Errorf("unknown order state %q", s)
}

// Order is a placed order ("ordered" resource on the backend).
type Order struct {
	ID      int        `json:"id"`
	OrderID int        `json:"orderId"`
	UserID  int        `json:"userId"`
	Date    Timestamp  `json:"date"`
	State   OrderState `json:"state"`
}

// Timestamp decodes the backend's date encodings: epoch milliseconds, RFC 3339
// or a bare yyyy-mm-dd date. It always encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000+00:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		millis, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// DisplayDate renders the date the way the order list shows and filters it:
// month and day without zero padding.
func (t Timestamp) DisplayDate() string {
	if t.IsZero() {
		return ""
	}
	return t.Time.Format("1/2/2006")
}
