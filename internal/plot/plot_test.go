package plot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/tjma12/gwsumm/internal/segments"
	"github.com/tjma12/gwsumm/internal/timerange"
)

var (
	pngMagic = []byte("\x89PNG\r\n\x1a\n")
	testSpan = timerange.Span{Start: 1000000000, End: 1000086400}
)

func TestTimeseries_Render(t *testing.T) {
	tests := []struct {
		name string
		plot *Timeseries
	}{
		{
			name: "two lines",
			plot: &Timeseries{
				Title: "Range",
				Span:  testSpan,
				Lines: []Line{
					{Label: "H1", Times: []float64{1000000000, 1000040000}, Values: []float64{60, 65}},
					{Label: "L1", Times: []float64{1000000000, 1000040000}, Values: []float64{70, math.NaN()}},
				},
			},
		},
		{
			name: "no data",
			plot: &Timeseries{Title: "Empty", Span: testSpan},
		},
		{
			name: "flat line with ylim",
			plot: &Timeseries{
				Title: "Flat",
				Span:  testSpan,
				Lines: []Line{{Label: "H1", Times: []float64{1000000100}, Values: []float64{3}}},
				YLim:  &[2]float64{0, 10},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := test.plot.Render(&buf); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Fatalf("Render() did not produce a PNG")
			}
		})
	}
}

func TestSegments_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "H1-SUMMARY-ALL-1-1000000000-86400.png")
	plot := &Segments{
		Title: "States",
		Span:  testSpan,
		Rows: []SegmentRow{
			{Label: "All", Active: segments.List{{Start: 1000000000, End: 1000086400}}},
			{Label: "Observing", Active: segments.List{{Start: 999999000, End: 1000003600}}},
		},
	}
	if err := WriteFile(path, plot); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("WriteFile() did not write a PNG")
	}
}

func TestPadRange(t *testing.T) {
	if lo, hi := padRange(5, 5); lo >= 5 || hi <= 5 {
		t.Fatalf("padRange(5, 5) = %g, %g", lo, hi)
	}
	if lo, hi := padRange(0, 0); lo != -1 || hi != 1 {
		t.Fatalf("padRange(0, 0) = %g, %g", lo, hi)
	}
}
