package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOrderStatusTerminal(t *testing.T) {
	cases := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusNew, false},
		{OrderStatusPartiallyFilled, false},
		{OrderStatusFilled, true},
		{OrderStatusCancelled, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.want {
			t.Errorf("Terminal(%q) = %v, want %v", c.status, got, c.want)
		}
	}
}

// The HTTP API and the SDK client both serialize these types directly, so
// the wire names are a contract.
func TestOrderWireFormat(t *testing.T) {
	o := Order{
		ID:        "bA422",
		Symbol:    "2330",
		Side:      OrderSideBuy,
		Price:     595,
		Quantity:  2,
		FilledQty: 1,
		Status:    OrderStatusPartiallyFilled,
		Condition: ConditionCash,
		Time:      time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC),
		Raw:       map[string]string{"venue": "internal"},
	}

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	for _, key := range []string{"id", "symbol", "side", "price", "quantity", "filled_qty", "status", "condition", "time"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("marshalled Order missing %q", key)
		}
	}
	if _, ok := fields["Raw"]; ok {
		t.Error("Raw leaked into the wire format")
	}
	if len(fields) != 9 {
		t.Errorf("marshalled Order has %d fields, want 9", len(fields))
	}

	var back Order
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal into Order: %v", err)
	}
	if back.ID != o.ID || back.Status != o.Status || back.FilledQty != o.FilledQty || !back.Time.Equal(o.Time) {
		t.Errorf("round-trip changed order: got %+v, want %+v", back, o)
	}
}
