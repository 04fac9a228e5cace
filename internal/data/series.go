// Package data fetches channel samples for the processed span.
package data

import (
	"math"
	"sort"

	"github.com/tjma12/gwsumm/internal/segments"
)

// Series holds the samples of one channel. Times are GPS seconds in
// increasing order.
type Series struct {
	Channel string
	Times   []float64
	Values  []float64
}

// Len returns the number of samples.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Times)
}

// byTime orders a series' parallel slices by time.
type byTime struct{ s *Series }

func (b byTime) Len() int           { return len(b.s.Times) }
func (b byTime) Less(i, j int) bool { return b.s.Times[i] < b.s.Times[j] }
func (b byTime) Swap(i, j int) {
	b.s.Times[i], b.s.Times[j] = b.s.Times[j], b.s.Times[i]
	b.s.Values[i], b.s.Values[j] = b.s.Values[j], b.s.Values[i]
}

// SortByTime puts samples in increasing time order. Samples sharing a time
// keep their file order.
func (s *Series) SortByTime() {
	if !sort.IsSorted(byTime{s}) {
		sort.Stable(byTime{s})
	}
}

// Restrict returns the samples that fall inside segs.
func (s *Series) Restrict(segs segments.List) *Series {
	out := &Series{Channel: s.Channel}
	coalesced := segs.Coalesce()
	for i, t := range s.Times {
		if coalesced.Contains(t) {
			out.Times = append(out.Times, t)
			out.Values = append(out.Values, s.Values[i])
		}
	}
	return out
}

// Stats summarises sample values.
type Stats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// Stats computes summary statistics, ignoring NaN values.
func (s *Series) Stats() Stats {
	stats := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		stats.Count++
		sum += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	if stats.Count == 0 {
		return Stats{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	}
	stats.Mean = sum / float64(stats.Count)
	return stats
}
