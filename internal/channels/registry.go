package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tjma12/gwsumm/internal/config"
)

// ErrFrozen is returned when a frozen registry is asked to add a channel.
var ErrFrozen = errors.New("channel registry is frozen")

var keyCleaner = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Registry maps channel names to metadata. It is filled during setup and
// frozen before tabs are processed.
type Registry struct {
	catalog  Catalog
	logger   *slog.Logger
	channels map[string]*Channel
	order    []string
	frozen   bool
}

// NewRegistry returns an empty registry. A nil catalog means every channel
// is built from its name alone.
func NewRegistry(catalog Catalog, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		catalog:  catalog,
		logger:   logger,
		channels: make(map[string]*Channel),
	}
}

// Get returns a registered channel.
func (r *Registry) Get(name string) (*Channel, bool) {
	ch, ok := r.channels[name]
	return ch, ok
}

// Ensure returns the registered channel, registering it first if needed.
// Catalog failures fall back to a bare channel.
func (r *Registry) Ensure(ctx context.Context, name string) (*Channel, error) {
	if ch, ok := r.channels[name]; ok {
		return ch, nil
	}
	if r.frozen {
		return nil, fmt.Errorf("register %q: %w", name, ErrFrozen)
	}

	ch := r.query(ctx, name)
	r.channels[name] = ch
	r.order = append(r.order, name)
	return ch, nil
}

func (r *Registry) query(ctx context.Context, name string) *Channel {
	if r.catalog == nil {
		return New(name)
	}
	ch, err := r.catalog.Query(ctx, name)
	if err != nil {
		r.logger.Debug("channel catalog lookup failed, using bare channel", "channel", name, "error", err)
		return New(name)
	}
	return ch
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	return len(r.channels)
}

// All returns the registered channels in registration order.
func (r *Registry) All() []*Channel {
	out := make([]*Channel, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.channels[name])
	}
	return out
}

// LoadConfig registers every section named like a channel and applies its
// options. Numeric keys build the bitmask in numeric order; recognised keys
// fill the fixed fields and everything else lands in Extra.
func (r *Registry) LoadConfig(ctx context.Context, cfg *config.Config) error {
	for _, section := range cfg.Sections() {
		if !IsName(section) {
			continue
		}
		ch, err := r.Ensure(ctx, section)
		if err != nil {
			return err
		}
		items, err := cfg.OwnItems(section)
		if err != nil {
			return err
		}
		if err := r.apply(cfg, section, ch, items); err != nil {
			return err
		}
	}
	return nil
}

type bit struct {
	index int
	label string
}

func (r *Registry) apply(cfg *config.Config, section string, ch *Channel, items []config.Item) error {
	var bits []bit
	for _, item := range items {
		value, err := cfg.Get(section, item.Key)
		if err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		key := strings.ToLower(strings.Trim(keyCleaner.ReplaceAllString(strings.TrimSpace(item.Key), "_"), "_"))

		if index, err := strconv.Atoi(key); err == nil {
			bits = append(bits, bit{index: index, label: value})
			continue
		}
		switch key {
		case "sample_rate", "samplerate":
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("channel %s: parse %s: %w", ch.Name, item.Key, err)
			}
			ch.SampleRate = rate
		case "unit", "units":
			ch.Unit = value
		case "type":
			ch.Type = value
		case "frametype", "frame_type":
			ch.FrameType = value
		case "description":
			ch.Description = value
		default:
			if ch.Extra == nil {
				ch.Extra = make(map[string]string)
			}
			ch.Extra[key] = value
		}
	}
	if len(bits) > 0 {
		sort.SliceStable(bits, func(i, j int) bool { return bits[i].index < bits[j].index })
		ch.Bitmask = ch.Bitmask[:0]
		for _, b := range bits {
			ch.Bitmask = append(ch.Bitmask, b.label)
		}
	}
	return nil
}
