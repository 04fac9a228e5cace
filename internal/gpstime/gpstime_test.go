package gpstime

import (
	"testing"
	"time"
)

func TestFromUTC_KnownInstants(t *testing.T) {
	tests := []struct {
		name string
		utc  time.Time
		want int64
	}{
		{name: "epoch", utc: Epoch, want: 0},
		{name: "2014", utc: time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC), want: 1072569616},
		{name: "2017", utc: time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC), want: 1167264018},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromUTC(tt.utc); got != tt.want {
				t.Fatalf("FromUTC(%s) = %d, want %d", tt.utc, got, tt.want)
			}
		})
	}
}

func TestToUTC_RoundTripsAcrossLeapSeconds(t *testing.T) {
	instants := []time.Time{
		time.Date(1985, time.June, 30, 12, 0, 0, 0, time.UTC),
		time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2016, time.December, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, time.March, 3, 4, 5, 6, 0, time.UTC),
	}
	for _, instant := range instants {
		if got := ToUTC(FromUTC(instant)); !got.Equal(instant) {
			t.Fatalf("ToUTC(FromUTC(%s)) = %s", instant, got)
		}
	}
}

func TestLeapSecondsAt_CountsFullTable(t *testing.T) {
	if got := LeapSecondsAt(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)); got != 18 {
		t.Fatalf("LeapSecondsAt(2030) = %d, want 18", got)
	}
	if got := LeapSecondsAt(Epoch); got != 0 {
		t.Fatalf("LeapSecondsAt(epoch) = %d, want 0", got)
	}
}
