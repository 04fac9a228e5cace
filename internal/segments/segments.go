// Package segments implements half-open GPS time intervals and lists of
// them.
package segments

import (
	"fmt"
	"sort"
)

// Segment is the half-open interval [Start, End).
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End-Start, or zero for an empty segment.
func (s Segment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether t lies inside the segment.
func (s Segment) Contains(t float64) bool {
	return t >= s.Start && t < s.End
}

func (s Segment) String() string {
	return fmt.Sprintf("[%g, %g)", s.Start, s.End)
}

// List is an ordered list of segments. Operations return coalesced lists.
type List []Segment

// Coalesce sorts the list, drops empty segments and merges overlapping or
// touching ones.
func (l List) Coalesce() List {
	sorted := make(List, 0, len(l))
	for _, seg := range l {
		if seg.End > seg.Start {
			sorted = append(sorted, seg)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make(List, 0, len(sorted))
	for _, seg := range sorted {
		if n := len(out); n > 0 && seg.Start <= out[n-1].End {
			if seg.End > out[n-1].End {
				out[n-1].End = seg.End
			}
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Livetime returns the total covered duration.
func (l List) Livetime() float64 {
	var total float64
	for _, seg := range l.Coalesce() {
		total += seg.Duration()
	}
	return total
}

// Contains reports whether t lies inside any segment.
func (l List) Contains(t float64) bool {
	for _, seg := range l {
		if seg.Contains(t) {
			return true
		}
	}
	return false
}

// Union returns the coalesced union of two lists.
func (l List) Union(other List) List {
	merged := make(List, 0, len(l)+len(other))
	merged = append(merged, l...)
	merged = append(merged, other...)
	return merged.Coalesce()
}

// Intersect returns the times covered by both lists.
func (l List) Intersect(other List) List {
	a, b := l.Coalesce(), other.Coalesce()
	var out List
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := max(a[i].Start, b[j].Start)
		end := min(a[i].End, b[j].End)
		if end > start {
			out = append(out, Segment{Start: start, End: end})
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

// Complement returns the parts of span not covered by the list.
func (l List) Complement(span Segment) List {
	var out List
	cursor := span.Start
	for _, seg := range l.Coalesce() {
		if seg.End <= span.Start || seg.Start >= span.End {
			continue
		}
		if seg.Start > cursor {
			out = append(out, Segment{Start: cursor, End: seg.Start})
		}
		if seg.End > cursor {
			cursor = seg.End
		}
	}
	if cursor < span.End {
		out = append(out, Segment{Start: cursor, End: span.End})
	}
	return out
}

// FromSamples builds the segments during which active is true. Each sample
// holds until the next one; the last holds until end.
func FromSamples(times []float64, active []bool, end float64) List {
	var out List
	for i := range times {
		if i >= len(active) || !active[i] {
			continue
		}
		stop := end
		if i+1 < len(times) {
			stop = times[i+1]
		}
		out = append(out, Segment{Start: times[i], End: stop})
	}
	return out.Coalesce()
}
