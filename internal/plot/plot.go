// Package plot renders summary figures as PNG images.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/tjma12/gwsumm/internal/segments"
	"github.com/tjma12/gwsumm/internal/timerange"
)

const (
	defaultWidth  = 1200
	defaultHeight = 400
)

// Renderer writes one figure.
type Renderer interface {
	Render(w io.Writer) error
}

// WriteFile renders r to path, creating parent directories.
func WriteFile(path string, r Renderer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	if err := r.Render(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("write plot %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

// Line is one plotted channel.
type Line struct {
	Label  string
	Times  []float64
	Values []float64
}

// Timeseries plots channel values against time since the span start.
type Timeseries struct {
	Title  string
	YLabel string
	Span   timerange.Span
	Lines  []Line

	// YLim fixes the Y range when non-nil.
	YLim *[2]float64
}

// Render implements Renderer.
func (p *Timeseries) Render(w io.Writer) error {
	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, line := range p.Lines {
		xs, ys := hoursSince(p.Span, line.Times, line.Values)
		if len(xs) == 0 {
			continue
		}
		for _, y := range ys {
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
		if len(xs) == 1 {
			xs = append(xs, xs[0])
			ys = append(ys, ys[0])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    line.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 1.5,
			},
		})
	}

	switch {
	case p.YLim != nil && p.YLim[0] < p.YLim[1]:
		lo, hi = p.YLim[0], p.YLim[1]
	case math.IsInf(lo, 0) || math.IsInf(hi, 0):
		lo, hi = 0, 1
	default:
		lo, hi = padRange(lo, hi)
	}

	title := p.Title
	if len(series) == 0 {
		title += " (no data)"
		series = append(series, placeholder(p.Span, lo))
	}

	c := newChart(title, p.Span)
	c.YAxis = chart.YAxis{Name: p.YLabel, Range: &chart.ContinuousRange{Min: lo, Max: hi}}
	c.Series = series
	if len(p.Lines) > 1 {
		c.Elements = []chart.Renderable{chart.Legend(&c)}
	}
	return c.Render(chart.PNG, w)
}

// SegmentRow is one state drawn as an on/off band.
type SegmentRow struct {
	Label  string
	Active segments.List
}

// Segments draws one band per row; the band is raised while the row is
// active.
type Segments struct {
	Title string
	Span  timerange.Span
	Rows  []SegmentRow
}

// Render implements Renderer.
func (p *Segments) Render(w io.Writer) error {
	var series []chart.Series
	var ticks []chart.Tick
	for i, row := range p.Rows {
		base := float64(i) * 1.5
		xs, ys := stepPoints(p.Span, row.Active, base)
		series = append(series, chart.ContinuousSeries{
			Name:    row.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
		})
		ticks = append(ticks, chart.Tick{Value: base + 0.5, Label: row.Label})
	}
	if len(series) == 0 {
		series = append(series, placeholder(p.Span, 0))
	}
	top := math.Max(1, float64(len(p.Rows))*1.5)

	c := newChart(p.Title, p.Span)
	c.YAxis = chart.YAxis{
		Range: &chart.ContinuousRange{Min: -0.25, Max: top},
		Ticks: ticks,
	}
	c.Series = series
	return c.Render(chart.PNG, w)
}

func newChart(title string, span timerange.Span) chart.Chart {
	hours := float64(span.Duration()) / 3600
	return chart.Chart{
		Title:      title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  fmt.Sprintf("Time [hours] from %s UTC", span.StartUTC().Format("2006-01-02 15:04:05")),
			Range: &chart.ContinuousRange{Min: 0, Max: hours},
		},
	}
}

func hoursSince(span timerange.Span, times, values []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(times))
	ys := make([]float64, 0, len(times))
	start := float64(span.Start)
	for i, t := range times {
		if i >= len(values) || math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		xs = append(xs, (t-start)/3600)
		ys = append(ys, values[i])
	}
	return xs, ys
}

// stepPoints traces the outline of active segments as a square wave
// between base and base+1.
func stepPoints(span timerange.Span, active segments.List, base float64) ([]float64, []float64) {
	start, end := float64(span.Start), float64(span.End)
	xs := []float64{0}
	ys := []float64{base}
	window := segments.List{{Start: start, End: end}}
	for _, seg := range active.Intersect(window) {
		x0, x1 := (seg.Start-start)/3600, (seg.End-start)/3600
		xs = append(xs, x0, x0, x1, x1)
		ys = append(ys, base, base+1, base+1, base)
	}
	xs = append(xs, (end-start)/3600)
	ys = append(ys, base)
	return xs, ys
}

// placeholder is an invisible series that keeps the chart renderable when
// there is nothing to draw.
func placeholder(span timerange.Span, y float64) chart.Series {
	return chart.ContinuousSeries{
		XValues: []float64{0, float64(span.Duration()) / 3600},
		YValues: []float64{y, y},
		Style: chart.Style{
			StrokeColor: chart.ColorTransparent,
			StrokeWidth: 1,
		},
	}
}

func padRange(lo, hi float64) (float64, float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi-lo == 0 {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		return lo - pad, hi + pad
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}
