package tabs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tjma12/gwsumm/internal/channels"
	"github.com/tjma12/gwsumm/internal/config"
	"github.com/tjma12/gwsumm/internal/data"
	"github.com/tjma12/gwsumm/internal/segments"
	"github.com/tjma12/gwsumm/internal/states"
	"github.com/tjma12/gwsumm/internal/timerange"
)

// PlotDirName is the shared plot directory under the output root.
const PlotDirName = "plots"

// Env is the run context handed to every tab. It is built once during
// setup; its registries are frozen before processing starts.
type Env struct {
	Config    *config.Config
	Channels  *channels.Registry
	States    *states.Registry
	Data      data.Source
	Span      timerange.Span
	Mode      timerange.Mode
	IFO       string
	OutputDir string
	Logger    *slog.Logger

	active map[string]segments.List
}

// PlotDir returns the absolute plot directory.
func (e *Env) PlotDir() string {
	return filepath.Join(e.OutputDir, PlotDirName)
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// State looks up a state by name.
func (e *Env) State(name string) (*states.State, error) {
	return e.States.Get(name)
}

// ActiveSegments evaluates state over the run span, memoised per state.
func (e *Env) ActiveSegments(ctx context.Context, state *states.State) (segments.List, error) {
	if segs, ok := e.active[state.Key]; ok {
		return segs, nil
	}
	segs, err := state.Evaluate(ctx, e.Data, e.Span)
	if err != nil {
		return nil, err
	}
	if e.active == nil {
		e.active = make(map[string]segments.List)
	}
	e.active[state.Key] = segs
	e.logger().Debug("state evaluated", "state", state.Name, "segments", len(segs), "livetime", segs.Livetime())
	return segs, nil
}

// Channel returns the registered channel, or a bare one if it was never
// registered.
func (e *Env) Channel(name string) *channels.Channel {
	if e.Channels != nil {
		if ch, ok := e.Channels.Get(name); ok {
			return ch
		}
	}
	return channels.New(name)
}

// PlotFileName returns "<IFO>-<TAB>-<STATE>-<N>-<start>-<duration>.png".
func (e *Env) PlotFileName(tab *Base, state *states.State, index int) string {
	tag := strings.ToUpper(strings.ReplaceAll(tab.Path(), "/", "_"))
	stateTag := strings.ToUpper(Slugify(state.Key))
	return strings.Join([]string{
		e.IFO,
		tag,
		stateTag,
		strconv.Itoa(index),
		strconv.FormatInt(e.Span.Start, 10),
		strconv.FormatInt(e.Span.Duration(), 10),
	}, "-") + ".png"
}

// tabStates resolves every state name of tab.
func (e *Env) tabStates(tab *Base) ([]*states.State, error) {
	out := make([]*states.State, 0, len(tab.States))
	for _, name := range tab.States {
		state, err := e.State(name)
		if err != nil {
			return nil, fmt.Errorf("tab %q: %w", tab.Name, err)
		}
		out = append(out, state)
	}
	return out, nil
}
