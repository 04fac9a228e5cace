package states

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tjma12/gwsumm/internal/config"
)

// SectionPrefix marks state sections in the configuration.
const SectionPrefix = "state-"

var (
	// ErrFrozen is returned when a frozen registry is asked to add a state.
	ErrFrozen = errors.New("state registry is frozen")
	// ErrUnknown is returned for names that match no state.
	ErrUnknown = errors.New("unknown state")
)

// Registry holds every state of a run, always including All.
type Registry struct {
	states map[string]*State
	order  []string
	frozen bool
}

// NewRegistry returns a registry holding only the All state.
func NewRegistry() *Registry {
	r := &Registry{states: make(map[string]*State)}
	all := &State{Name: AllName, Key: AllKey}
	r.states[all.Key] = all
	r.order = append(r.order, all.Key)
	return r
}

// Add registers a state, replacing any with the same key.
func (r *Registry) Add(state *State) error {
	if r.frozen {
		return fmt.Errorf("add state %q: %w", state.Name, ErrFrozen)
	}
	if _, ok := r.states[state.Key]; !ok {
		r.order = append(r.order, state.Key)
	}
	r.states[state.Key] = state
	return nil
}

// Get looks a state up by name or key, ignoring case.
func (r *Registry) Get(name string) (*State, error) {
	key := KeyFor(name)
	if state, ok := r.states[key]; ok {
		return state, nil
	}
	for _, k := range r.order {
		if KeyFor(r.states[k].Name) == key {
			return r.states[k], nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknown, name)
}

// All returns the states in registration order.
func (r *Registry) All() []*State {
	out := make([]*State, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.states[key])
	}
	return out
}

// Len returns the number of states.
func (r *Registry) Len() int {
	return len(r.states)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

// LoadConfig adds one state per [state-<key>] section. The section may set
// "name" (default: the key) and "definition".
func (r *Registry) LoadConfig(cfg *config.Config) error {
	for _, section := range cfg.SectionsWithPrefix(SectionPrefix) {
		key := strings.TrimSpace(strings.TrimPrefix(section, SectionPrefix))
		if key == "" {
			return fmt.Errorf("load state: section %q has no key", section)
		}
		name := strings.TrimSpace(cfg.GetDefault(section, "name", key))
		definition := cfg.GetDefault(section, "definition", "")
		state, err := New(name, definition)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		state.Key = KeyFor(key)
		if err := r.Add(state); err != nil {
			return err
		}
	}
	return nil
}
