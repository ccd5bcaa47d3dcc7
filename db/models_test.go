package db

import "testing"

func TestRoomStatusValid(t *testing.T) {
	cases := []struct {
		status RoomStatus
		want   bool
	}{
		{StatusWaiting, true},
		{StatusPlaying, true},
		{StatusFinished, true},
		{RoomStatus("paused"), false},
		{RoomStatus(""), false},
	}
	for _, tc := range cases {
		if got := tc.status.Valid(); got != tc.want {
			t.Fatalf("Valid(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
