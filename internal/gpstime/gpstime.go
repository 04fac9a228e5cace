// Package gpstime converts between UTC wall-clock time and GPS seconds.
//
// GPS time counts SI seconds since 1980-01-06T00:00:00Z and does not
// observe leap seconds, so conversions apply the published leap second
// table.
package gpstime

import "time"

// Epoch is the zero point of GPS time.
var Epoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// leapSeconds lists the UTC instants at which a leap second took effect
// after the GPS epoch.
var leapSeconds = []time.Time{
	time.Date(1981, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1982, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1983, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1985, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1988, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1991, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1992, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1993, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1994, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1997, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2012, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC),
}

// LeapSecondsAt returns the number of leap seconds inserted between the GPS
// epoch and t.
func LeapSecondsAt(t time.Time) int64 {
	t = t.UTC()
	var n int64
	for _, leap := range leapSeconds {
		if t.Before(leap) {
			break
		}
		n++
	}
	return n
}

// FromUTC converts a UTC instant to whole GPS seconds, truncating any
// sub-second part.
func FromUTC(t time.Time) int64 {
	t = t.UTC()
	return t.Unix() - Epoch.Unix() + LeapSecondsAt(t)
}

// ToUTC converts GPS seconds back to a UTC instant.
func ToUTC(gps int64) time.Time {
	var leaps int64
	for i, leap := range leapSeconds {
		if gps < FromUTC(leap) {
			break
		}
		leaps = int64(i + 1)
	}
	return time.Unix(gps+Epoch.Unix()-leaps, 0).UTC()
}
