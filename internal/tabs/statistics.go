package tabs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/tjma12/gwsumm/internal/config"
)

// StatRow summarises one channel under one state.
type StatRow struct {
	Channel string
	Unit    string
	Samples int
	Min     float64
	Mean    float64
	Max     float64
}

// StatTable is the statistics of every channel under one state.
type StatTable struct {
	State    string
	Livetime float64
	Duty     float64
	Rows     []StatRow
}

// StatisticsTab tabulates channel statistics per state.
type StatisticsTab struct {
	Base
	ChannelNames []string
	Tables       []StatTable
}

func newStatisticsTab(cfg *config.Config, section string, base Base) (Tab, error) {
	names, err := cfg.GetList(section, "channels")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, &config.NoOptionError{Section: section, Option: "channels"}
	}
	return &StatisticsTab{Base: base, ChannelNames: names}, nil
}

// Channels implements ChannelUser.
func (t *StatisticsTab) Channels() []string {
	return t.ChannelNames
}

// Process implements Tab.
func (t *StatisticsTab) Process(ctx context.Context, env *Env) error {
	tabStates, err := env.tabStates(&t.Base)
	if err != nil {
		return err
	}
	t.Tables = t.Tables[:0]
	for _, state := range tabStates {
		active, err := env.ActiveSegments(ctx, state)
		if err != nil {
			return err
		}
		table := StatTable{State: state.Name, Livetime: active.Livetime()}
		if duration := env.Span.Duration(); duration > 0 {
			table.Duty = 100 * table.Livetime / float64(duration)
		}
		for _, name := range t.ChannelNames {
			series, err := env.Data.Fetch(ctx, name, env.Span)
			if err != nil {
				return err
			}
			stats := series.Restrict(active).Stats()
			table.Rows = append(table.Rows, StatRow{
				Channel: name,
				Unit:    env.Channel(name).Unit,
				Samples: stats.Count,
				Min:     stats.Min,
				Mean:    stats.Mean,
				Max:     stats.Max,
			})
		}
		t.Tables = append(t.Tables, table)
	}
	return nil
}

const statisticsTemplate = `{{range .}}<h2>{{.State}}</h2>
<p>Livetime: {{seconds .Livetime}} ({{percent .Duty}})</p>
<table class="table table-sm table-hover">
<thead><tr><th>Channel</th><th>Samples</th><th>Min</th><th>Mean</th><th>Max</th><th>Unit</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Channel}}</td><td>{{count .Samples}}</td><td>{{number .Min}}</td><td>{{number .Mean}}</td><td>{{number .Max}}</td><td>{{.Unit}}</td></tr>
{{end}}</tbody>
</table>
{{end}}`

var statisticsPage = template.Must(template.New("statistics").Funcs(template.FuncMap{
	"number":  formatNumber,
	"count":   formatCount,
	"seconds": formatSeconds,
	"percent": formatPercent,
}).Parse(statisticsTemplate))

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return humanize.CommafWithDigits(v, 3)
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

func formatSeconds(s float64) string {
	return humanize.Comma(int64(math.Round(s))) + " s"
}

func formatPercent(p float64) string {
	return humanize.FormatFloat("#.##", p) + "%"
}

// Content implements Tab.
func (t *StatisticsTab) Content() (template.HTML, error) {
	var buf bytes.Buffer
	if err := statisticsPage.Execute(&buf, t.Tables); err != nil {
		return "", fmt.Errorf("render statistics tab %q: %w", t.Name, err)
	}
	return template.HTML(buf.String()), nil
}
