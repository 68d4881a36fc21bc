package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusRefunded, true},
		{OrderStatusShipped, OrderStatusCancelled, true},

		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusRefunded, false},
		{OrderStatusCancelled, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusRefunded, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusPending, OrderStatus("bogus"), false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded} {
		if !status.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped} {
		if status.IsTerminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPaid, PaymentStatusRefunded, true},

		{PaymentStatusPaid, PaymentStatusPending, false},
		{PaymentStatusPaid, PaymentStatusFailed, false},
		{PaymentStatusFailed, PaymentStatusPaid, false},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
		{PaymentStatusPending, PaymentStatusRefunded, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
