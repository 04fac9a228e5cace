// Package config loads the INI configuration that drives a summary run.
//
// Files are parsed with gopkg.in/ini.v1 and copied into an ordered,
// mutable section/option model. Only "=" separates keys from values because
// channel names, which are used as section and key names, contain colons.
// Values may reference other options of the same section, or of the DEFAULT
// section, with %(name)s.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultSection holds fallback values for every other section.
const DefaultSection = "DEFAULT"

const maxInterpolationDepth = 10

// ErrMissingIFO is returned when no instrument code is configured.
var ErrMissingIFO = errors.New("the relevant IFO must be given either from the --ifo command-line option, or the [DEFAULT] section of any INI file")

// NoSectionError reports a missing section.
type NoSectionError struct {
	Section string
}

func (e *NoSectionError) Error() string {
	return fmt.Sprintf("config: no section %q", e.Section)
}

// NoOptionError reports a missing option within a section.
type NoOptionError struct {
	Section string
	Option  string
}

func (e *NoOptionError) Error() string {
	return fmt.Sprintf("config: no option %q in section %q", e.Option, e.Section)
}

// InterpolationError reports a %(name)s reference that could not be resolved.
type InterpolationError struct {
	Section string
	Option  string
	Reason  string
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("config: interpolate %q in section %q: %s", e.Option, e.Section, e.Reason)
}

// Item is one key/value pair of a section.
type Item struct {
	Key   string
	Value string
}

// Section is an ordered key/value store.
type Section struct {
	name   string
	keys   []string
	values map[string]string
}

func newSection(name string) *Section {
	return &Section{name: name, values: make(map[string]string)}
}

// Name returns the section name.
func (s *Section) Name() string {
	return s.name
}

func (s *Section) get(key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

func (s *Section) set(key, value string) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Section) items() []Item {
	items := make([]Item, 0, len(s.keys))
	for _, key := range s.keys {
		items = append(items, Item{Key: key, Value: s.values[key]})
	}
	return items
}

// Config is the merged configuration of one run.
type Config struct {
	// Files lists the absolute paths of the files that were read, in order.
	Files []string

	defaults *Section
	sections []*Section
	index    map[string]*Section
}

// New returns an empty configuration.
func New() *Config {
	return &Config{
		defaults: newSection(DefaultSection),
		index:    make(map[string]*Section),
	}
}

// Load reads and merges the given INI files. Later files override earlier
// ones for duplicate keys.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one configuration file is required")
	}
	sources := make([]any, 0, len(paths))
	files := make([]string, 0, len(paths))
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		sources = append(sources, absPath)
		files = append(files, absPath)
	}
	cfg, err := LoadSources(sources...)
	if err != nil {
		return nil, err
	}
	cfg.Files = files
	return cfg, nil
}

// LoadSources merges INI data from file paths, []byte contents or readers,
// in order.
func LoadSources(sources ...any) (*Config, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one configuration source is required")
	}
	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:         "=",
		IgnoreInlineComment:        true,
		AllowPythonMultilineValues: true,
	}, sources[0], sources[1:]...)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := New()
	for _, sec := range file.Sections() {
		target := cfg.defaults
		if sec.Name() != DefaultSection {
			target = cfg.ensure(sec.Name())
		}
		for _, key := range sec.Keys() {
			target.set(key.Name(), key.Value())
		}
	}
	return cfg, nil
}

func (c *Config) ensure(name string) *Section {
	if sec, ok := c.index[name]; ok {
		return sec
	}
	sec := newSection(name)
	c.sections = append(c.sections, sec)
	c.index[name] = sec
	return sec
}

func (c *Config) section(name string) (*Section, error) {
	if name == "" || name == DefaultSection {
		return c.defaults, nil
	}
	sec, ok := c.index[name]
	if !ok {
		return nil, &NoSectionError{Section: name}
	}
	return sec, nil
}

// Sections returns the names of all sections except DEFAULT, in order.
func (c *Config) Sections() []string {
	names := make([]string, 0, len(c.sections))
	for _, sec := range c.sections {
		names = append(names, sec.name)
	}
	return names
}

// HasSection reports whether the named section exists.
func (c *Config) HasSection(name string) bool {
	_, ok := c.index[name]
	return ok
}

// AddSection creates a new empty section.
func (c *Config) AddSection(name string) error {
	if name == "" || name == DefaultSection {
		return fmt.Errorf("config: invalid section name %q", name)
	}
	if c.HasSection(name) {
		return fmt.Errorf("config: section %q already exists", name)
	}
	c.ensure(name)
	return nil
}

// RenameSection renames a section in place. An existing section called to
// is replaced.
func (c *Config) RenameSection(from, to string) error {
	sec, ok := c.index[from]
	if !ok {
		return &NoSectionError{Section: from}
	}
	if from == to {
		return nil
	}
	if existing, ok := c.index[to]; ok {
		c.removeSection(existing)
	}
	delete(c.index, from)
	sec.name = to
	c.index[to] = sec
	return nil
}

func (c *Config) removeSection(target *Section) {
	kept := c.sections[:0]
	for _, sec := range c.sections {
		if sec != target {
			kept = append(kept, sec)
		}
	}
	c.sections = kept
	delete(c.index, target.name)
}

// Has reports whether option is set in section or in DEFAULT.
func (c *Config) Has(section, option string) bool {
	sec, err := c.section(section)
	if err != nil {
		return false
	}
	if _, ok := sec.get(option); ok {
		return true
	}
	_, ok := c.defaults.get(option)
	return ok
}

// Raw returns the uninterpolated value of option, falling back to DEFAULT.
func (c *Config) Raw(section, option string) (string, error) {
	sec, err := c.section(section)
	if err != nil {
		return "", err
	}
	if value, ok := sec.get(option); ok {
		return value, nil
	}
	if value, ok := c.defaults.get(option); ok {
		return value, nil
	}
	return "", &NoOptionError{Section: section, Option: option}
}

// Get returns the interpolated value of option, falling back to DEFAULT.
func (c *Config) Get(section, option string) (string, error) {
	raw, err := c.Raw(section, option)
	if err != nil {
		return "", err
	}
	return c.interpolate(section, option, raw, 1)
}

// GetDefault is Get with a fallback for missing options.
func (c *Config) GetDefault(section, option, fallback string) string {
	value, err := c.Get(section, option)
	if err != nil {
		return fallback
	}
	return value
}

// GetInt parses option as an integer.
func (c *Config) GetInt(section, option string) (int64, error) {
	value, err := c.Get(section, option)
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: [%s] %s: %w", section, option, err)
	}
	return parsed, nil
}

// GetFloat parses option as a float.
func (c *Config) GetFloat(section, option string) (float64, error) {
	value, err := c.Get(section, option)
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("config: [%s] %s: %w", section, option, err)
	}
	return parsed, nil
}

// GetBool parses option using the INI boolean spellings.
func (c *Config) GetBool(section, option string) (bool, error) {
	value, err := c.Get(section, option)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	default:
		return false, fmt.Errorf("config: [%s] %s: not a boolean: %q", section, option, value)
	}
}

// GetList splits option on commas, trimming space and dropping empty
// entries. A missing option yields an empty list.
func (c *Config) GetList(section, option string) ([]string, error) {
	value, err := c.Get(section, option)
	if err != nil {
		var noOption *NoOptionError
		if errors.As(err, &noOption) {
			return nil, nil
		}
		return nil, err
	}
	return SplitList(value), nil
}

// SplitList splits a value separated by commas or continuation lines.
func SplitList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Set assigns option in section. An empty section name, or DEFAULT, sets a
// default value.
func (c *Config) Set(section, option, value string) error {
	sec, err := c.section(section)
	if err != nil {
		return err
	}
	sec.set(option, value)
	return nil
}

// OwnItems returns the raw items defined in section itself, excluding
// DEFAULT values.
func (c *Config) OwnItems(section string) ([]Item, error) {
	sec, err := c.section(section)
	if err != nil {
		return nil, err
	}
	return sec.items(), nil
}

// Items returns the interpolated items of section followed by any DEFAULT
// items it does not override.
func (c *Config) Items(section string) ([]Item, error) {
	sec, err := c.section(section)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(sec.keys)+len(c.defaults.keys))
	seen := make(map[string]bool, len(sec.keys))
	for _, key := range sec.keys {
		seen[key] = true
		items = append(items, Item{Key: key})
	}
	if sec != c.defaults {
		for _, key := range c.defaults.keys {
			if !seen[key] {
				items = append(items, Item{Key: key})
			}
		}
	}
	for i := range items {
		value, err := c.Get(section, items[i].Key)
		if err != nil {
			return nil, err
		}
		items[i].Value = value
	}
	return items, nil
}

func (c *Config) interpolate(section, option, value string, depth int) (string, error) {
	if !strings.Contains(value, "%") {
		return value, nil
	}
	if depth > maxInterpolationDepth {
		return "", &InterpolationError{Section: section, Option: option, Reason: "recursion limit exceeded"}
	}

	var builder strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] != '%' {
			builder.WriteByte(value[i])
			continue
		}
		rest := value[i+1:]
		switch {
		case strings.HasPrefix(rest, "%"):
			builder.WriteByte('%')
			i++
		case strings.HasPrefix(rest, "("):
			end := strings.Index(rest, ")s")
			if end < 0 {
				return "", &InterpolationError{Section: section, Option: option, Reason: fmt.Sprintf("bad reference in %q", value)}
			}
			name := rest[1:end]
			raw, err := c.Raw(section, name)
			if err != nil {
				return "", &InterpolationError{Section: section, Option: option, Reason: fmt.Sprintf("missing %q", name)}
			}
			resolved, err := c.interpolate(section, name, raw, depth+1)
			if err != nil {
				return "", err
			}
			builder.WriteString(resolved)
			i += end + 2
		default:
			return "", &InterpolationError{Section: section, Option: option, Reason: fmt.Sprintf("'%%' must be followed by '%%' or '(' in %q", value)}
		}
	}
	return builder.String(), nil
}
