package tabs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tjma12/gwsumm/internal/config"
	"github.com/tjma12/gwsumm/internal/plot"
	"github.com/tjma12/gwsumm/internal/segments"
	"github.com/tjma12/gwsumm/internal/states"
)

// Plot types.
const (
	PlotTimeseries = "timeseries"
	PlotSegments   = "segments"
)

// PlotSpec is one numbered plot declared in a plots tab, e.g.
//
//	1 = H1:DMT-SNSH_INSPIRAL_RANGE
//	1-title = BNS range
//	1-ylim = 0,80
type PlotSpec struct {
	Index  int
	Type   string
	Title  string
	YLabel string
	YLim   *[2]float64

	// Sources are channel names for timeseries plots and state names for
	// segments plots.
	Sources []string
}

// PlotOutput is one rendered image.
type PlotOutput struct {
	State string
	Index int

	// File is relative to the output root, e.g. "plots/H1-SUMMARY-ALL-1-...png".
	File    string
	Caption string
}

// PlotsTab renders its numbered plots once per state.
type PlotsTab struct {
	Base
	Plots   []PlotSpec
	Outputs []PlotOutput
}

func newPlotsTab(cfg *config.Config, section string, base Base) (Tab, error) {
	items, err := cfg.OwnItems(section)
	if err != nil {
		return nil, err
	}
	tab := &PlotsTab{Base: base}
	for _, item := range items {
		index, err := strconv.Atoi(strings.TrimSpace(item.Key))
		if err != nil {
			continue
		}
		spec, err := parsePlotSpec(cfg, section, index)
		if err != nil {
			return nil, err
		}
		tab.Plots = append(tab.Plots, spec)
	}
	sort.Slice(tab.Plots, func(i, j int) bool { return tab.Plots[i].Index < tab.Plots[j].Index })
	return tab, nil
}

func parsePlotSpec(cfg *config.Config, section string, index int) (PlotSpec, error) {
	key := strconv.Itoa(index)
	value, err := cfg.Get(section, key)
	if err != nil {
		return PlotSpec{}, err
	}
	spec := PlotSpec{
		Index:   index,
		Type:    strings.ToLower(strings.TrimSpace(cfg.GetDefault(section, key+"-type", PlotTimeseries))),
		Title:   strings.TrimSpace(cfg.GetDefault(section, key+"-title", "")),
		YLabel:  strings.TrimSpace(cfg.GetDefault(section, key+"-ylabel", "")),
		Sources: config.SplitList(value),
	}
	if len(spec.Sources) == 0 {
		return PlotSpec{}, fmt.Errorf("plot %d: nothing to plot", index)
	}
	switch spec.Type {
	case PlotTimeseries, PlotSegments:
	default:
		return PlotSpec{}, fmt.Errorf("plot %d: unknown type %q", index, spec.Type)
	}
	if raw := strings.TrimSpace(cfg.GetDefault(section, key+"-ylim", "")); raw != "" {
		ylim, err := parseLimits(raw)
		if err != nil {
			return PlotSpec{}, fmt.Errorf("plot %d: %w", index, err)
		}
		spec.YLim = ylim
	}
	return spec, nil
}

func parseLimits(raw string) (*[2]float64, error) {
	parts := config.SplitList(strings.Trim(raw, "[]() "))
	if len(parts) != 2 {
		return nil, fmt.Errorf("parse limits %q: want lo,hi", raw)
	}
	var out [2]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse limits %q: %w", raw, err)
		}
		out[i] = value
	}
	if out[0] >= out[1] {
		return nil, fmt.Errorf("parse limits %q: lower bound must be below upper bound", raw)
	}
	return &out, nil
}

// Channels implements ChannelUser.
func (t *PlotsTab) Channels() []string {
	var out []string
	for _, spec := range t.Plots {
		if spec.Type == PlotTimeseries {
			out = append(out, spec.Sources...)
		}
	}
	return out
}

// Process implements Tab.
func (t *PlotsTab) Process(ctx context.Context, env *Env) error {
	tabStates, err := env.tabStates(&t.Base)
	if err != nil {
		return err
	}
	t.Outputs = t.Outputs[:0]
	for _, state := range tabStates {
		active, err := env.ActiveSegments(ctx, state)
		if err != nil {
			return err
		}
		for _, spec := range t.Plots {
			name := env.PlotFileName(&t.Base, state, spec.Index)
			renderer, err := t.renderer(ctx, env, spec, state, active)
			if err != nil {
				return fmt.Errorf("plot %d: %w", spec.Index, err)
			}
			if err := plot.WriteFile(filepath.Join(env.PlotDir(), name), renderer); err != nil {
				return err
			}
			t.Outputs = append(t.Outputs, PlotOutput{
				State:   state.Name,
				Index:   spec.Index,
				File:    path.Join(PlotDirName, name),
				Caption: plotTitle(spec),
			})
			env.logger().Debug("plot written", "tab", t.Name, "state", state.Name, "file", name)
		}
	}
	return nil
}

func plotTitle(spec PlotSpec) string {
	if spec.Title != "" {
		return spec.Title
	}
	return strings.Join(spec.Sources, ", ")
}

func (t *PlotsTab) renderer(ctx context.Context, env *Env, spec PlotSpec, state *states.State, active segments.List) (plot.Renderer, error) {
	title := fmt.Sprintf("%s (%s)", plotTitle(spec), state.Name)
	if spec.Type == PlotSegments {
		rows := make([]plot.SegmentRow, 0, len(spec.Sources))
		for _, name := range spec.Sources {
			flag, err := env.State(name)
			if err != nil {
				return nil, err
			}
			segs, err := env.ActiveSegments(ctx, flag)
			if err != nil {
				return nil, err
			}
			rows = append(rows, plot.SegmentRow{Label: flag.Name, Active: segs.Intersect(active)})
		}
		return &plot.Segments{Title: title, Span: env.Span, Rows: rows}, nil
	}

	figure := &plot.Timeseries{Title: title, YLabel: spec.YLabel, Span: env.Span, YLim: spec.YLim}
	for _, name := range spec.Sources {
		ch := env.Channel(name)
		series, err := env.Data.Fetch(ctx, name, env.Span)
		if err != nil {
			return nil, err
		}
		series = series.Restrict(active)
		figure.Lines = append(figure.Lines, plot.Line{Label: ch.String(), Times: series.Times, Values: series.Values})
		if figure.YLabel == "" && len(spec.Sources) == 1 {
			figure.YLabel = ch.Unit
		}
	}
	return figure, nil
}

const plotsTemplate = `{{range .States}}<h2 id="{{.ID}}">{{.Name}}</h2>
<div class="row">
{{range .Plots}}<div class="col-md-12">
<a href="{{.Href}}" class="fancybox" data-fancybox="{{.Group}}" title="{{.Caption}}"><img src="{{.Href}}" alt="{{.Caption}}" class="img-fluid"></a>
</div>
{{end}}</div>
{{else}}<p>No plots configured.</p>
{{end}}`

var plotsPage = template.Must(template.New("plots").Parse(plotsTemplate))

type plotLink struct {
	Href    string
	Caption string
	Group   string
}

type plotGroup struct {
	ID    string
	Name  string
	Plots []plotLink
}

// Content implements Tab.
func (t *PlotsTab) Content() (template.HTML, error) {
	var groups []*plotGroup
	byState := make(map[string]*plotGroup)
	for _, out := range t.Outputs {
		group, ok := byState[out.State]
		if !ok {
			group = &plotGroup{ID: "state-" + Slugify(out.State), Name: out.State}
			byState[out.State] = group
			groups = append(groups, group)
		}
		group.Plots = append(group.Plots, plotLink{
			Href:    t.RelRoot() + out.File,
			Caption: out.Caption,
			Group:   group.ID,
		})
	}
	if len(t.Plots) > 0 && len(groups) == 0 {
		return template.HTML("<p>Not processed.</p>"), nil
	}
	var buf bytes.Buffer
	if err := plotsPage.Execute(&buf, map[string]any{"States": groups}); err != nil {
		return "", fmt.Errorf("render plots tab %q: %w", t.Name, err)
	}
	return template.HTML(buf.String()), nil
}
