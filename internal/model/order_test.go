package model

import "testing"

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCompleted, true},

		// No skipping ahead or moving backwards.
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusConfirmed, false},

		// Cancellation from any non-terminal state only.
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},

		// Terminal states are dead ends.
		{OrderStatusCompleted, OrderStatusConfirmed, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusReady, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusCancelled,
	} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if OrderStatus("refunded").Valid() {
		t.Error("refunded should not be valid")
	}
}
