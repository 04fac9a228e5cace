// Package channels keeps the metadata of every data channel referenced by a
// run.
package channels

import (
	"fmt"
	"regexp"
	"strings"
)

var namePattern = regexp.MustCompile(`^[A-Z]\d:[A-Z]+-[A-Z0-9_]+$`)

// IsName reports whether s is a strictly formatted channel name such as
// "H1:DMT-SNSH_INSPIRAL_RANGE".
func IsName(s string) bool {
	return namePattern.MatchString(s)
}

// Channel describes one time-series data source.
type Channel struct {
	Name        string            `json:"name" yaml:"name"`
	IFO         string            `json:"ifo" yaml:"-"`
	System      string            `json:"system" yaml:"-"`
	Signal      string            `json:"signal" yaml:"-"`
	SampleRate  float64           `json:"sample_rate,omitempty" yaml:"sample_rate"`
	Unit        string            `json:"unit,omitempty" yaml:"unit"`
	Type        string            `json:"type,omitempty" yaml:"type"`
	FrameType   string            `json:"frametype,omitempty" yaml:"frametype"`
	Description string            `json:"description,omitempty" yaml:"description"`
	Bitmask     []string          `json:"bitmask,omitempty" yaml:"bitmask"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"-"`
}

// New builds a bare channel from its name alone.
func New(name string) *Channel {
	ch := &Channel{Name: name}
	ch.splitName()
	return ch
}

func (c *Channel) splitName() {
	ifo, rest, ok := strings.Cut(c.Name, ":")
	if !ok {
		c.Signal = c.Name
		return
	}
	c.IFO = ifo
	system, signal, ok := strings.Cut(rest, "-")
	if !ok {
		c.Signal = rest
		return
	}
	c.System = system
	c.Signal = signal
}

// Texname returns the channel name with underscores escaped for LaTeX-style
// labels.
func (c *Channel) Texname() string {
	return strings.ReplaceAll(c.Name, "_", `\_`)
}

// FileStem returns a filesystem-safe stem, e.g. "H1-DMT-SNSH_INSPIRAL_RANGE".
func (c *Channel) FileStem() string {
	return strings.NewReplacer(":", "-", "/", "_", " ", "_").Replace(c.Name)
}

func (c *Channel) String() string {
	if c.Unit != "" {
		return fmt.Sprintf("%s [%s]", c.Name, c.Unit)
	}
	return c.Name
}
