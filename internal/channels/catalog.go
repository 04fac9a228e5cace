package channels

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by a Catalog that does not know a channel.
var ErrNotFound = errors.New("channel not found in catalog")

// Catalog looks up channel metadata from an external source.
type Catalog interface {
	Query(ctx context.Context, name string) (*Channel, error)
}

// YAMLCatalog is a Catalog backed by a YAML document of the form
//
//	channels:
//	  - name: H1:DMT-SNSH_INSPIRAL_RANGE
//	    sample_rate: 0.0166
//	    unit: Mpc
type YAMLCatalog struct {
	entries map[string]Channel
}

type catalogFile struct {
	Channels []Channel `yaml:"channels"`
}

// LoadYAMLCatalog reads a catalog file.
func LoadYAMLCatalog(path string) (*YAMLCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channel catalog: %w", err)
	}
	return ParseYAMLCatalog(data)
}

// ParseYAMLCatalog parses catalog contents.
func ParseYAMLCatalog(data []byte) (*YAMLCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse channel catalog: %w", err)
	}
	catalog := &YAMLCatalog{entries: make(map[string]Channel, len(file.Channels))}
	for _, entry := range file.Channels {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("parse channel catalog: entry without a name")
		}
		entry.Name = name
		catalog.entries[name] = entry
	}
	return catalog, nil
}

// Query returns a copy of the catalogued channel.
func (c *YAMLCatalog) Query(ctx context.Context, name string) (*Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("query %q: %w", name, ErrNotFound)
	}
	ch := entry
	ch.Bitmask = append([]string(nil), entry.Bitmask...)
	ch.splitName()
	return &ch, nil
}

// Len returns the number of catalogued channels.
func (c *YAMLCatalog) Len() int {
	return len(c.entries)
}
