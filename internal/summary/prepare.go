// Package summary runs the summary page pipeline: configuration, channel
// and state registries, tab tree, processing and HTML output.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tjma12/gwsumm/internal/channels"
	"github.com/tjma12/gwsumm/internal/config"
	"github.com/tjma12/gwsumm/internal/data"
	"github.com/tjma12/gwsumm/internal/states"
	"github.com/tjma12/gwsumm/internal/tabs"
	"github.com/tjma12/gwsumm/internal/timerange"
)

const (
	defaultOutputDir = "."
	calendarSection  = "calendar"
	channelsSection  = "channels"
)

// Request selects what to build.
type Request struct {
	ConfigFiles []string // required
	IFO         string   // optional; overrides [DEFAULT] ifo
	OutputDir   string   // optional, defaults to "."
	Selection   timerange.Selection
	Now         time.Time // optional, defaults to time.Now
	Logger      *slog.Logger
	Profile     bool
}

// Run is the prepared state of one pipeline run. Registries are frozen.
type Run struct {
	Env *tabs.Env
	// Tabs are in declaration order.
	Tabs []tabs.Tab
	// Roots are sorted for display, with sorted children.
	Roots []tabs.Tab

	started time.Time
	profile bool
	closer  interface{ Close() error }
}

// Close releases the data source.
func (r *Run) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// log writes an info line, adding the elapsed time when profiling.
func (r *Run) log(msg string, args ...any) {
	if r.profile {
		args = append(args, "elapsed", time.Since(r.started).Round(time.Millisecond).String())
	}
	r.Env.Logger.Info(msg, args...)
}

// Prepare loads configuration and builds every registry and the tab tree.
// It does not fetch data or write output.
func Prepare(ctx context.Context, req Request) (*Run, error) {
	if len(req.ConfigFiles) == 0 {
		return nil, fmt.Errorf("at least one --config-file is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	run := &Run{started: time.Now(), profile: req.Profile}

	cfg, err := config.Load(req.ConfigFiles...)
	if err != nil {
		return nil, err
	}
	ifo, err := cfg.ResolveIFO(req.IFO)
	if err != nil {
		return nil, err
	}
	if err := cfg.InterpolateSectionNames(ifo); err != nil {
		return nil, fmt.Errorf("interpolate section names: %w", err)
	}

	sel := req.Selection
	if strings.TrimSpace(sel.StartOfWeek) == "" {
		sel.StartOfWeek = cfg.GetDefault(calendarSection, "start-of-week", "")
	}
	mode, span, err := timerange.Resolve(sel, now)
	if err != nil {
		return nil, err
	}
	cfg.SetSpan(span.Start, span.End)

	if _, err := cfg.ExpandChannelGroups(); err != nil {
		return nil, fmt.Errorf("expand channel groups: %w", err)
	}

	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}

	run.Env = &tabs.Env{
		Config:    cfg,
		Span:      span,
		Mode:      mode,
		IFO:       ifo,
		OutputDir: absOutputDir,
		Logger:    logger,
	}
	run.log("configuration loaded", "files", len(cfg.Files), "ifo", ifo, "mode", mode.String(),
		"start", span.StartUTC().Format(time.RFC3339), "end", span.EndUTC().Format(time.RFC3339),
		"gps_start", span.Start, "gps_end", span.End)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	registry := channels.NewRegistry(catalog, logger)
	if err := registry.LoadConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	stateRegistry := states.NewRegistry()
	if err := stateRegistry.LoadConfig(cfg); err != nil {
		return nil, err
	}
	run.Env.Channels = registry
	run.Env.States = stateRegistry

	declared, err := tabs.Build(cfg)
	if err != nil {
		return nil, err
	}
	roots, err := tabs.Link(declared)
	if err != nil {
		return nil, err
	}
	run.Tabs = declared
	run.Roots = tabs.SortTree(roots)

	if err := registerReferencedChannels(ctx, registry, stateRegistry, declared); err != nil {
		return nil, err
	}
	registry.Freeze()
	stateRegistry.Freeze()
	run.log("registries ready", "channels", registry.Len(), "states", stateRegistry.Len(), "tabs", len(declared))
	return run, nil
}

// OpenData attaches the configured data source to the run.
func (r *Run) OpenData(ctx context.Context) error {
	source, err := data.Open(ctx, r.Env.Config)
	if err != nil {
		return err
	}
	r.Env.Data = source
	r.closer = source
	return nil
}

func loadCatalog(cfg *config.Config) (channels.Catalog, error) {
	if !cfg.HasSection(channelsSection) {
		return nil, nil
	}
	path := strings.TrimSpace(cfg.GetDefault(channelsSection, "catalog", ""))
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) && len(cfg.Files) > 0 {
		path = filepath.Join(filepath.Dir(cfg.Files[0]), path)
	}
	catalog, err := channels.LoadYAMLCatalog(path)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// registerReferencedChannels adds the channels read by tabs and state
// definitions so that processing never writes to the registry.
func registerReferencedChannels(ctx context.Context, registry *channels.Registry, stateRegistry *states.Registry, declared []tabs.Tab) error {
	for _, tab := range declared {
		user, ok := tab.(tabs.ChannelUser)
		if !ok {
			continue
		}
		for _, name := range user.Channels() {
			if _, err := registry.Ensure(ctx, name); err != nil {
				return err
			}
		}
	}
	for _, state := range stateRegistry.All() {
		for _, name := range state.Channels() {
			if _, err := registry.Ensure(ctx, name); err != nil {
				return err
			}
		}
	}
	return nil
}
