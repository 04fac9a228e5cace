package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tjma12/gwsumm/internal/config"
	"github.com/tjma12/gwsumm/internal/timerange"
)

// ErrNoSource is returned when data is requested but no [datafind] source
// is configured.
var ErrNoSource = errors.New("no data source configured; set [datafind] source and path")

const datafindSection = "datafind"

// Source fetches the samples of one channel inside a span.
type Source interface {
	Fetch(ctx context.Context, channel string, span timerange.Span) (*Series, error)
}

type noSource struct{}

func (noSource) Fetch(ctx context.Context, channel string, span timerange.Span) (*Series, error) {
	return nil, fmt.Errorf("fetch %s: %w", channel, ErrNoSource)
}

// CSVSource reads one "<IFO>-<SYSTEM>-<SIGNAL>.csv" file per channel from
// Dir. Rows are "gps,value"; lines starting with '#' and a non-numeric
// header row are skipped.
type CSVSource struct {
	Dir string
}

// Path returns the file read for channel.
func (s *CSVSource) Path(channel string) string {
	stem := strings.NewReplacer(":", "-", "/", "_").Replace(channel)
	return filepath.Join(s.Dir, stem+".csv")
}

// Fetch implements Source.
func (s *CSVSource) Fetch(ctx context.Context, channel string, span timerange.Span) (*Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(channel)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", channel, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	series := &Series{Channel: channel}
	start, end := float64(span.Start), float64(span.End)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch %s: read %s: %w", channel, path, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("fetch %s: %s line %d: expected gps,value", channel, path, line)
		}
		gps, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("fetch %s: %s line %d: %w", channel, path, line, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %s line %d: %w", channel, path, line, err)
		}
		if gps < start || gps >= end {
			continue
		}
		series.Times = append(series.Times, gps)
		series.Values = append(series.Values, value)
	}
	series.SortByTime()
	return series, nil
}

// Cache memoises fetches for the lifetime of a run.
type Cache struct {
	source Source
	series map[string]*Series
}

// NewCache wraps source.
func NewCache(source Source) *Cache {
	return &Cache{source: source, series: make(map[string]*Series)}
}

// Fetch implements Source.
func (c *Cache) Fetch(ctx context.Context, channel string, span timerange.Span) (*Series, error) {
	key := fmt.Sprintf("%s@%d-%d", channel, span.Start, span.End)
	if series, ok := c.series[key]; ok {
		return series, nil
	}
	series, err := c.source.Fetch(ctx, channel, span)
	if err != nil {
		return nil, err
	}
	c.series[key] = series
	return series, nil
}

// Close releases the wrapped source if it holds resources.
func (c *Cache) Close() error {
	if closer, ok := c.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Open builds the source described by the [datafind] section. Relative
// paths resolve against the directory of the first configuration file.
func Open(ctx context.Context, cfg *config.Config) (*Cache, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.GetDefault(datafindSection, "source", "")))
	if !cfg.HasSection(datafindSection) || kind == "" || kind == "none" {
		return NewCache(noSource{}), nil
	}
	path, err := cfg.Get(datafindSection, "path")
	if err != nil {
		return nil, fmt.Errorf("open data source: %w", err)
	}
	path = resolvePath(cfg, strings.TrimSpace(path))

	switch kind {
	case "csv":
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("open data source: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("open data source: %s is not a directory", path)
		}
		return NewCache(&CSVSource{Dir: path}), nil
	case "sqlite":
		source, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return NewCache(source), nil
	default:
		return nil, fmt.Errorf("open data source: unknown [datafind] source %q", kind)
	}
}

func resolvePath(cfg *config.Config, path string) string {
	if filepath.IsAbs(path) || len(cfg.Files) == 0 {
		return path
	}
	return filepath.Join(filepath.Dir(cfg.Files[0]), path)
}
