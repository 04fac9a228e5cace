// Package tabs builds the report tab tree from configuration and processes
// each tab's content.
package tabs

import (
	"context"
	"fmt"
	"html/template"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/tjma12/gwsumm/internal/config"
	"github.com/tjma12/gwsumm/internal/states"
)

// SectionPrefix marks tab sections in the configuration.
const SectionPrefix = "tab-"

// SummaryName is the tab name that always sorts first.
const SummaryName = "Summary"

// Kind selects the tab variant.
type Kind string

const (
	KindPlots      Kind = "plots"
	KindStatistics Kind = "statistics"
	KindExternal   Kind = "external"
	KindText       Kind = "text"
	KindAbout      Kind = "about"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Tab is one page of the report.
type Tab interface {
	// Info returns the fields shared by every variant.
	Info() *Base
	// Process attaches the tab's content. It is called exactly once.
	Process(ctx context.Context, env *Env) error
	// Content renders the processed body of the page.
	Content() (template.HTML, error)
}

// ChannelUser is implemented by tabs that read channel data, so the
// channels can be registered before the registry is frozen.
type ChannelUser interface {
	Channels() []string
}

// Base holds the fields shared by every tab variant.
type Base struct {
	Name       string
	ShortName  string
	ParentName string
	Kind       Kind
	States     []string
	Section    string

	Parent   Tab
	Children []Tab
}

// Info implements Tab.
func (b *Base) Info() *Base {
	return b
}

// IsRoot reports whether the tab has no declared parent.
func (b *Base) IsRoot() bool {
	return strings.TrimSpace(b.ParentName) == ""
}

// Slug returns the URL-safe form of the tab name.
func (b *Base) Slug() string {
	return Slugify(b.Name)
}

// Path returns the output directory of the tab relative to the site root,
// e.g. "summary" or "summary/range".
func (b *Base) Path() string {
	if b.Parent != nil {
		return path.Join(b.Parent.Info().Path(), b.Slug())
	}
	return b.Slug()
}

// RelRoot returns the relative prefix from the tab page back to the site
// root, e.g. "../" for a root tab.
func (b *Base) RelRoot() string {
	return strings.Repeat("../", strings.Count(b.Path(), "/")+1)
}

// Slugify lower-cases name and collapses everything but letters and digits
// into underscores.
func Slugify(name string) string {
	return strings.Trim(slugCleaner.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// ParentNotFoundError reports a tab whose parent does not name a root tab.
type ParentNotFoundError struct {
	Tab    string
	Parent string
}

func (e *ParentNotFoundError) Error() string {
	return fmt.Sprintf("tab %q: parent tab %q not found", e.Tab, e.Parent)
}

// DuplicateTabError reports two tabs with the same name, or two tabs that
// would be written to the same output path.
type DuplicateTabError struct {
	Name string

	// Path and Other are set for output path collisions.
	Path  string
	Other string
}

func (e *DuplicateTabError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("tab %q: output path %q is already used by %q", e.Name, e.Path, e.Other)
	}
	return fmt.Sprintf("duplicate tab %q", e.Name)
}

// Factory builds a tab variant from its section. base is already filled.
type Factory func(cfg *config.Config, section string, base Base) (Tab, error)

var factories = map[Kind]Factory{
	KindPlots:      newPlotsTab,
	KindStatistics: newStatisticsTab,
	KindExternal:   newExternalTab,
	KindText:       newTextTab,
}

// FromConfig builds the tab declared by section.
func FromConfig(cfg *config.Config, section string) (Tab, error) {
	if !cfg.HasSection(section) {
		return nil, &config.NoSectionError{Section: section}
	}
	defaultName := strings.TrimSpace(strings.TrimPrefix(section, SectionPrefix))
	base := Base{
		Name:       strings.TrimSpace(cfg.GetDefault(section, "name", defaultName)),
		ParentName: strings.TrimSpace(cfg.GetDefault(section, "parent", "")),
		Kind:       Kind(strings.ToLower(strings.TrimSpace(cfg.GetDefault(section, "type", string(KindPlots))))),
		Section:    section,
	}
	if base.Name == "" {
		return nil, fmt.Errorf("tab section %q: empty name", section)
	}
	base.ShortName = strings.TrimSpace(cfg.GetDefault(section, "shortname", base.Name))
	stateNames, err := cfg.GetList(section, "states")
	if err != nil {
		return nil, fmt.Errorf("tab %q: %w", base.Name, err)
	}
	if len(stateNames) == 0 {
		stateNames = []string{states.AllName}
	}
	base.States = stateNames

	factory, ok := factories[base.Kind]
	if !ok {
		return nil, fmt.Errorf("tab %q: unknown type %q", base.Name, base.Kind)
	}
	tab, err := factory(cfg, section, base)
	if err != nil {
		return nil, fmt.Errorf("tab %q: %w", base.Name, err)
	}
	return tab, nil
}

// Build constructs every [tab-*] section in declaration order.
func Build(cfg *config.Config) ([]Tab, error) {
	sections := cfg.SectionsWithPrefix(SectionPrefix)
	tabs := make([]Tab, 0, len(sections))
	for _, section := range sections {
		tab, err := FromConfig(cfg, section)
		if err != nil {
			return nil, err
		}
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

// Link resolves parent names in two passes: root tabs are indexed by name,
// then every child is attached to the root it names. Only root tabs can be
// parents. It returns the roots in declaration order.
func Link(tabs []Tab) ([]Tab, error) {
	roots := make(map[string]Tab)
	var ordered []Tab
	for _, tab := range tabs {
		info := tab.Info()
		info.Parent = nil
		info.Children = nil
		if !info.IsRoot() {
			continue
		}
		if _, exists := roots[info.Name]; exists {
			return nil, &DuplicateTabError{Name: info.Name}
		}
		roots[info.Name] = tab
		ordered = append(ordered, tab)
	}

	for _, tab := range tabs {
		info := tab.Info()
		if info.IsRoot() {
			continue
		}
		parent, ok := roots[info.ParentName]
		if !ok {
			return nil, &ParentNotFoundError{Tab: info.Name, Parent: info.ParentName}
		}
		for _, sibling := range parent.Info().Children {
			if sibling.Info().Name == info.Name {
				return nil, &DuplicateTabError{Name: info.ParentName + "/" + info.Name}
			}
		}
		info.Parent = parent
		parent.Info().Children = append(parent.Info().Children, tab)
	}

	if err := checkPaths(tabs); err != nil {
		return nil, err
	}
	return ordered, nil
}

// checkPaths rejects tabs whose output directories coincide, either with
// each other or with the about page and the shared plot directory.
func checkPaths(tabs []Tab) error {
	used := map[string]string{
		Slugify(AboutName): AboutName,
		PlotDirName:        PlotDirName,
	}
	for _, tab := range tabs {
		info := tab.Info()
		path := info.Path()
		if other, exists := used[path]; exists {
			return &DuplicateTabError{Name: info.Name, Path: path, Other: other}
		}
		used[path] = info.Name
	}
	return nil
}

// Less orders tab names for display: "Summary" first, then
// case-insensitively.
func Less(a, b string) bool {
	if a == SummaryName || b == SummaryName {
		return a == SummaryName && b != SummaryName
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Sort returns tabs in display order. The input is not modified.
func Sort(tabs []Tab) []Tab {
	out := append([]Tab(nil), tabs...)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i].Info().Name, out[j].Info().Name)
	})
	return out
}

// SortTree sorts roots and each root's children for navigation.
func SortTree(roots []Tab) []Tab {
	sorted := Sort(roots)
	for _, root := range sorted {
		root.Info().Children = Sort(root.Info().Children)
	}
	return sorted
}
