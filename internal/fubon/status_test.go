package fubon

import (
	"testing"

	"tradegate/internal/domain"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		filled float64
		total  float64
		want   domain.OrderStatus
	}{
		{"accepted untouched", 10, 0, 1000, domain.OrderStatusNew},
		{"accepted partially filled", 10, 400, 1000, domain.OrderStatusPartiallyFilled},
		{"accepted fully reported", 10, 1000, 1000, domain.OrderStatusNew},
		{"cancelled", 30, 0, 1000, domain.OrderStatusCancelled},
		{"cancelled after partial fill stays cancelled", 30, 400, 1000, domain.OrderStatusCancelled},
		{"filled", 50, 1000, 1000, domain.OrderStatusFilled},
		{"filled code with fill in progress", 50, 400, 1000, domain.OrderStatusPartiallyFilled},
		{"failed", 90, 0, 1000, domain.OrderStatusCancelled},
		{"unknown code", 99, 0, 1000, domain.OrderStatusNew},
		{"unknown code with partial fill", 99, 1, 1000, domain.OrderStatusPartiallyFilled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveStatus(tt.code, tt.filled, tt.total); got != tt.want {
				t.Errorf("resolveStatus(%d, %v, %v) = %v, want %v",
					tt.code, tt.filled, tt.total, got, tt.want)
			}
		})
	}
}
