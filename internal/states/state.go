// Package states defines the named time-interval filters that tabs are
// processed under.
package states

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tjma12/gwsumm/internal/data"
	"github.com/tjma12/gwsumm/internal/segments"
	"github.com/tjma12/gwsumm/internal/timerange"
)

const (
	// AllName is the name of the built-in state covering the whole span.
	AllName = "All"
	// AllKey is its lookup key.
	AllKey = "all"
)

var conditionPattern = regexp.MustCompile(`^([A-Z]\d:[A-Za-z0-9_\-]+)\s*(>=|<=|==|!=|>|<)\s*(\S+)$`)

// Condition compares every sample of one channel against a threshold.
type Condition struct {
	Channel   string  `json:"channel"`
	Op        string  `json:"op"`
	Threshold float64 `json:"threshold"`
}

// Holds reports whether v satisfies the condition.
func (c Condition) Holds(v float64) bool {
	switch c.Op {
	case ">=":
		return v >= c.Threshold
	case "<=":
		return v <= c.Threshold
	case ">":
		return v > c.Threshold
	case "<":
		return v < c.Threshold
	case "==":
		return v == c.Threshold
	case "!=":
		return v != c.Threshold
	}
	return false
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Channel, c.Op, strconv.FormatFloat(c.Threshold, 'g', -1, 64))
}

// State is an immutable, named filter. A state without conditions is active
// for the whole span.
type State struct {
	Name       string      `json:"name"`
	Key        string      `json:"key"`
	Definition string      `json:"definition,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// New builds a state from its name and definition.
func New(name, definition string) (*State, error) {
	conditions, err := ParseDefinition(definition)
	if err != nil {
		return nil, fmt.Errorf("state %q: %w", name, err)
	}
	return &State{
		Name:       name,
		Key:        KeyFor(name),
		Definition: strings.TrimSpace(definition),
		Conditions: conditions,
	}, nil
}

// KeyFor returns the lookup key for a state name.
func KeyFor(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseDefinition parses "H1:A-B >= 1 & H1:C-D < 5". A bare channel name
// means "!= 0".
func ParseDefinition(definition string) ([]Condition, error) {
	definition = strings.TrimSpace(definition)
	if definition == "" {
		return nil, nil
	}
	var out []Condition
	for _, part := range strings.Split(definition, "&") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("parse definition %q: empty condition", definition)
		}
		match := conditionPattern.FindStringSubmatch(part)
		if match == nil {
			if strings.ContainsAny(part, " <>=!") {
				return nil, fmt.Errorf("parse definition %q: malformed condition %q", definition, part)
			}
			out = append(out, Condition{Channel: part, Op: "!=", Threshold: 0})
			continue
		}
		threshold, err := strconv.ParseFloat(match[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse definition %q: threshold %q: %w", definition, match[3], err)
		}
		out = append(out, Condition{Channel: match[1], Op: match[2], Threshold: threshold})
	}
	return out, nil
}

// IsAll reports whether the state has no conditions.
func (s *State) IsAll() bool {
	return len(s.Conditions) == 0
}

// Channels returns the channels the definition reads.
func (s *State) Channels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.Conditions {
		if !seen[c.Channel] {
			seen[c.Channel] = true
			out = append(out, c.Channel)
		}
	}
	return out
}

// Evaluate returns the segments inside span during which every condition
// holds. Each sample holds until the next one.
func (s *State) Evaluate(ctx context.Context, source data.Source, span timerange.Span) (segments.List, error) {
	whole := segments.List{{Start: float64(span.Start), End: float64(span.End)}}
	if s.IsAll() {
		return whole, nil
	}
	active := whole
	for _, cond := range s.Conditions {
		series, err := source.Fetch(ctx, cond.Channel, span)
		if err != nil {
			return nil, fmt.Errorf("evaluate state %q: %w", s.Name, err)
		}
		flags := make([]bool, series.Len())
		for i, v := range series.Values {
			flags[i] = cond.Holds(v)
		}
		active = active.Intersect(segments.FromSamples(series.Times, flags, float64(span.End)))
	}
	return active, nil
}
