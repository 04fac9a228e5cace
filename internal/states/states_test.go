package states

import (
	"context"
	"errors"
	"testing"

	"github.com/tjma12/gwsumm/internal/config"
	"github.com/tjma12/gwsumm/internal/data"
	"github.com/tjma12/gwsumm/internal/segments"
	"github.com/tjma12/gwsumm/internal/timerange"
)

type fixedSource map[string]*data.Series

func (s fixedSource) Fetch(ctx context.Context, channel string, span timerange.Span) (*data.Series, error) {
	series, ok := s[channel]
	if !ok {
		return nil, errors.New("no such channel")
	}
	return series, nil
}

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name       string
		definition string
		want       []Condition
		wantErr    bool
	}{
		{name: "empty", definition: "  "},
		{
			name:       "two conditions",
			definition: "H1:GRD-LOCK >= 1 & H1:DMT-RANGE<5.5",
			want: []Condition{
				{Channel: "H1:GRD-LOCK", Op: ">=", Threshold: 1},
				{Channel: "H1:DMT-RANGE", Op: "<", Threshold: 5.5},
			},
		},
		{
			name:       "bare flag",
			definition: "L1:ODC-OBSERVING",
			want:       []Condition{{Channel: "L1:ODC-OBSERVING", Op: "!=", Threshold: 0}},
		},
		{name: "bad threshold", definition: "H1:A-B >= high", wantErr: true},
		{name: "dangling and", definition: "H1:A-B >= 1 &", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseDefinition(test.definition)
			if test.wantErr {
				if err == nil {
					t.Fatalf("ParseDefinition(%q) expected error", test.definition)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDefinition() error = %v", err)
			}
			if len(got) != len(test.want) {
				t.Fatalf("ParseDefinition() = %+v, want %+v", got, test.want)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Fatalf("condition %d = %+v, want %+v", i, got[i], test.want[i])
				}
			}
		})
	}
}

func TestRegistry_AlwaysHasAll(t *testing.T) {
	registry := NewRegistry()
	state, err := registry.Get("ALL")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.Name != AllName || !state.IsAll() {
		t.Fatalf("unexpected all state: %+v", state)
	}
	if _, err := registry.Get("observing"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestRegistry_LoadConfig(t *testing.T) {
	cfg, err := config.LoadSources([]byte(`
[state-observing]
name = Observing
definition = H1:GRD-LOCK >= 1

[state-bad]
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	registry := NewRegistry()
	if err := registry.LoadConfig(cfg); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if registry.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", registry.Len())
	}
	for _, name := range []string{"observing", "Observing"} {
		state, err := registry.Get(name)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", name, err)
		}
		if state.Name != "Observing" || len(state.Conditions) != 1 {
			t.Fatalf("unexpected state: %+v", state)
		}
	}

	registry.Freeze()
	if err := registry.Add(&State{Name: "late", Key: "late"}); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}

func TestState_Evaluate(t *testing.T) {
	span := timerange.Span{Start: 0, End: 400}
	source := fixedSource{
		"H1:GRD-LOCK":  {Channel: "H1:GRD-LOCK", Times: []float64{0, 100, 200, 300}, Values: []float64{1, 1, 0, 1}},
		"H1:DMT-RANGE": {Channel: "H1:DMT-RANGE", Times: []float64{0, 50}, Values: []float64{10, 60}},
	}
	state, err := New("Observing", "H1:GRD-LOCK >= 1 & H1:DMT-RANGE > 20")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := state.Evaluate(context.Background(), source, span)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := segments.List{{Start: 50, End: 200}, {Start: 300, End: 400}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Evaluate() = %v, want %v", got, want)
	}

	all := NewRegistry().All()[0]
	whole, err := all.Evaluate(context.Background(), source, span)
	if err != nil {
		t.Fatalf("Evaluate(all) error = %v", err)
	}
	if whole.Livetime() != 400 {
		t.Fatalf("all livetime = %g, want 400", whole.Livetime())
	}

	missing, _ := New("Missing", "H1:NOT-THERE > 0")
	if _, err := missing.Evaluate(context.Background(), source, span); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}
