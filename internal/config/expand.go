package config

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// IFOPlaceholder may prefix section names; it is replaced by the
// instrument code once that is known.
const IFOPlaceholder = "%(ifo)s"

// GeneralSection receives run-wide computed values.
const GeneralSection = "general"

var channelGroupPattern = regexp.MustCompile(`^channels[-\s]`)

// ResolveIFO determines the instrument code. A non-empty override wins and
// is stored in DEFAULT so %(ifo)s references see it.
func (c *Config) ResolveIFO(override string) (string, error) {
	if ifo := strings.TrimSpace(override); ifo != "" {
		c.defaults.set("ifo", ifo)
		return ifo, nil
	}
	ifo, err := c.Get(DefaultSection, "ifo")
	if err != nil {
		var noOption *NoOptionError
		if errors.As(err, &noOption) {
			return "", ErrMissingIFO
		}
		return "", err
	}
	ifo = strings.TrimSpace(ifo)
	if ifo == "" {
		return "", ErrMissingIFO
	}
	return ifo, nil
}

// InterpolateSectionNames renames sections that begin with IFOPlaceholder.
func (c *Config) InterpolateSectionNames(ifo string) error {
	for _, name := range c.Sections() {
		if !strings.HasPrefix(name, IFOPlaceholder) {
			continue
		}
		if err := c.RenameSection(name, strings.Replace(name, IFOPlaceholder, ifo, 1)); err != nil {
			return err
		}
	}
	return nil
}

// ExpandChannelGroups turns every [channels-<group>] section into one
// section per listed channel, each carrying the group's other options.
// Values are interpolated first, so %(ifo)s:SYS-CHAN lists work. It
// returns the names of the channel sections it wrote.
func (c *Config) ExpandChannelGroups() ([]string, error) {
	var written []string
	for _, group := range c.Sections() {
		if !channelGroupPattern.MatchString(group) {
			continue
		}
		items, err := c.OwnItems(group)
		if err != nil {
			return nil, err
		}
		var names []string
		found := false
		shared := make([]Item, 0, len(items))
		for _, item := range items {
			value, err := c.Get(group, item.Key)
			if err != nil {
				return nil, err
			}
			if item.Key == "channels" {
				names = SplitList(value)
				found = true
				continue
			}
			shared = append(shared, Item{Key: item.Key, Value: value})
		}
		if !found {
			return nil, &NoOptionError{Section: group, Option: "channels"}
		}
		for _, name := range names {
			sec := c.ensure(name)
			for _, item := range shared {
				sec.set(item.Key, item.Value)
			}
			written = append(written, name)
		}
	}
	return written, nil
}

// SetSpan records the processed GPS interval in [general].
func (c *Config) SetSpan(start, end int64) {
	sec := c.ensure(GeneralSection)
	sec.set("gps-start-time", strconv.FormatInt(start, 10))
	sec.set("gps-end-time", strconv.FormatInt(end, 10))
}

// SectionsWithPrefix returns the sections whose name starts with prefix, in
// order.
func (c *Config) SectionsWithPrefix(prefix string) []string {
	var names []string
	for _, name := range c.Sections() {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}
