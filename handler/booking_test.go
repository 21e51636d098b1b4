package handler

import (
	"bus_booking/model"
	"testing"
)

func TestCancelOwnershipGuard(t *testing.T) {
	owner := uint(7)

	cases := []struct {
		name      string
		owner     *uint
		caller    uint
		canCancel bool
	}{
		{"guest cancels guest booking via code", nil, 0, true},
		{"guest cannot cancel customer booking", &owner, 0, false},
		{"owner cancels own booking", &owner, 7, true},
		{"other customer cannot cancel", &owner, 8, false},
		{"signed-in customer cancels guest booking via code", nil, 7, true},
	}

	for _, tc := range cases {
		b := model.Booking{CustomerId: tc.owner}
		if got := canCancelBooking(b, tc.caller); got != tc.canCancel {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.canCancel)
		}
	}
}
