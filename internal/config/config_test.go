package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeINI(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
	return path
}

func TestLoad_LaterFilesOverrideEarlier(t *testing.T) {
	dir := t.TempDir()
	first := writeINI(t, dir, "a.ini", `[DEFAULT]
ifo = L1

[general]
title = First
keep = yes
`)
	second := writeINI(t, dir, "b.ini", `[general]
title = Second
`)

	cfg, err := Load(first, second)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, _ := cfg.Get("general", "title"); got != "Second" {
		t.Fatalf("title = %q, want Second", got)
	}
	if got, _ := cfg.Get("general", "keep"); got != "yes" {
		t.Fatalf("keep = %q, want yes", got)
	}
	if len(cfg.Files) != 2 || cfg.Files[0] != first || cfg.Files[1] != second {
		t.Fatalf("Files = %v", cfg.Files)
	}
}

func TestLoad_OnlyEqualsSeparatesKeys(t *testing.T) {
	cfg, err := LoadSources([]byte(`[H1:DMT-SNSH_INSPIRAL_RANGE]
unit = Mpc
H1:GDS-CALIB_STRAIN = strain
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if !cfg.HasSection("H1:DMT-SNSH_INSPIRAL_RANGE") {
		t.Fatalf("sections = %v", cfg.Sections())
	}
	got, err := cfg.Get("H1:DMT-SNSH_INSPIRAL_RANGE", "H1:GDS-CALIB_STRAIN")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "strain" {
		t.Fatalf("value = %q, want strain", got)
	}
}

func TestGet_FallsBackToDefaultAndInterpolates(t *testing.T) {
	cfg, err := LoadSources([]byte(`[DEFAULT]
ifo = H1
base = /data/%(ifo)s

[datafind]
path = %(base)s/frames
percent = 100%%
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if got, _ := cfg.Get("datafind", "ifo"); got != "H1" {
		t.Fatalf("ifo = %q, want H1", got)
	}
	if got, _ := cfg.Get("datafind", "path"); got != "/data/H1/frames" {
		t.Fatalf("path = %q", got)
	}
	if got, _ := cfg.Get("datafind", "percent"); got != "100%" {
		t.Fatalf("percent = %q", got)
	}
}

func TestGet_ReportsTypedErrors(t *testing.T) {
	cfg, err := LoadSources([]byte(`[general]
loop = %(loop)s
missing = %(nothing)s
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}

	var noSection *NoSectionError
	if _, err := cfg.Get("absent", "x"); !errors.As(err, &noSection) {
		t.Fatalf("expected NoSectionError, got %v", err)
	}
	var noOption *NoOptionError
	if _, err := cfg.Get("general", "x"); !errors.As(err, &noOption) {
		t.Fatalf("expected NoOptionError, got %v", err)
	}
	var interp *InterpolationError
	if _, err := cfg.Get("general", "loop"); !errors.As(err, &interp) {
		t.Fatalf("expected InterpolationError for recursion, got %v", err)
	}
	if _, err := cfg.Get("general", "missing"); !errors.As(err, &interp) {
		t.Fatalf("expected InterpolationError for missing reference, got %v", err)
	}
}

func TestExpandChannelGroups_CopiesSharedKeys(t *testing.T) {
	cfg, err := LoadSources([]byte(`[channels-foo]
channels = A,B,C
x = 1
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	written, err := cfg.ExpandChannelGroups()
	if err != nil {
		t.Fatalf("ExpandChannelGroups() error = %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("written = %v, want 3 sections", written)
	}
	for _, name := range []string{"A", "B", "C"} {
		got, err := cfg.Get(name, "x")
		if err != nil {
			t.Fatalf("Get(%q, x) error = %v", name, err)
		}
		if got != "1" {
			t.Fatalf("[%s] x = %q, want 1", name, got)
		}
		if cfg.Has(name, "channels") {
			t.Fatalf("[%s] must not inherit the channels list", name)
		}
	}
}

func TestExpandChannelGroups_RequiresChannelsOption(t *testing.T) {
	cfg, err := LoadSources([]byte(`[channels-bad]
x = 1
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	_, err = cfg.ExpandChannelGroups()
	var noOption *NoOptionError
	if !errors.As(err, &noOption) {
		t.Fatalf("expected NoOptionError, got %v", err)
	}
	if noOption.Section != "channels-bad" || noOption.Option != "channels" {
		t.Fatalf("unexpected error fields: %+v", noOption)
	}
}

func TestResolveIFO(t *testing.T) {
	cfg, err := LoadSources([]byte("[DEFAULT]\nifo = L1\n"))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if got, err := cfg.ResolveIFO(""); err != nil || got != "L1" {
		t.Fatalf("ResolveIFO(\"\") = %q, %v", got, err)
	}
	if got, err := cfg.ResolveIFO("H1"); err != nil || got != "H1" {
		t.Fatalf("ResolveIFO(H1) = %q, %v", got, err)
	}
	if got, _ := cfg.Get(DefaultSection, "ifo"); got != "H1" {
		t.Fatalf("override not stored in DEFAULT, got %q", got)
	}

	empty, err := LoadSources([]byte("[general]\n"))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if _, err := empty.ResolveIFO(""); !errors.Is(err, ErrMissingIFO) {
		t.Fatalf("expected ErrMissingIFO, got %v", err)
	}
}

func TestInterpolateSectionNames(t *testing.T) {
	cfg, err := LoadSources([]byte(`[%(ifo)s:DMT-SNSH_INSPIRAL_RANGE]
unit = Mpc

[tab-Summary]
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if err := cfg.InterpolateSectionNames("L1"); err != nil {
		t.Fatalf("InterpolateSectionNames() error = %v", err)
	}
	sections := cfg.Sections()
	if len(sections) != 2 || sections[0] != "L1:DMT-SNSH_INSPIRAL_RANGE" || sections[1] != "tab-Summary" {
		t.Fatalf("sections = %v", sections)
	}
	if got, _ := cfg.Get("L1:DMT-SNSH_INSPIRAL_RANGE", "unit"); got != "Mpc" {
		t.Fatalf("unit = %q after rename", got)
	}
}

func TestSetSpan_CreatesGeneralSection(t *testing.T) {
	cfg := New()
	cfg.SetSpan(100, 200)
	if got, _ := cfg.GetInt(GeneralSection, "gps-start-time"); got != 100 {
		t.Fatalf("gps-start-time = %d", got)
	}
	if got, _ := cfg.GetInt(GeneralSection, "gps-end-time"); got != 200 {
		t.Fatalf("gps-end-time = %d", got)
	}
}

func TestItems_OwnBeforeDefaults(t *testing.T) {
	cfg, err := LoadSources([]byte(`[DEFAULT]
ifo = H1
colour = red

[tab-a]
colour = blue
name = A
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	items, err := cfg.Items("tab-a")
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	want := []Item{{"colour", "blue"}, {"name", "A"}, {"ifo", "H1"}}
	if len(items) != len(want) {
		t.Fatalf("items = %+v", items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("items[%d] = %+v, want %+v", i, items[i], want[i])
		}
	}
	own, err := cfg.OwnItems("tab-a")
	if err != nil {
		t.Fatalf("OwnItems() error = %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("own items = %+v", own)
	}
}

func TestGetList(t *testing.T) {
	cfg, err := LoadSources([]byte("[tab-a]\nstates = Observing, , All\n"))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	got, err := cfg.GetList("tab-a", "states")
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(got) != 2 || got[0] != "Observing" || got[1] != "All" {
		t.Fatalf("GetList() = %v", got)
	}
	if got, err := cfg.GetList("tab-a", "absent"); err != nil || got != nil {
		t.Fatalf("GetList(absent) = %v, %v", got, err)
	}
}

func TestSectionEditing(t *testing.T) {
	cfg, err := LoadSources([]byte("[a]\nx = 1\n\n[b]\ny = 2\n"))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if err := cfg.AddSection("c"); err != nil {
		t.Fatalf("AddSection() error = %v", err)
	}
	if err := cfg.AddSection("a"); err == nil {
		t.Fatal("AddSection() on an existing section should fail")
	}

	if err := cfg.RenameSection("a", "b"); err != nil {
		t.Fatalf("RenameSection() error = %v", err)
	}
	if got := cfg.Sections(); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("Sections() = %v, want [b c]", got)
	}
	if got, _ := cfg.Get("b", "x"); got != "1" {
		t.Fatalf("renamed section lost its options: x = %q", got)
	}
	if cfg.Has("b", "y") {
		t.Fatal("replaced section options should be gone")
	}

	var noSection *NoSectionError
	if err := cfg.RenameSection("missing", "z"); !errors.As(err, &noSection) {
		t.Fatalf("RenameSection() error = %v, want *NoSectionError", err)
	}
}

func TestExpandChannelGroups_InterpolatesIFOInChannelList(t *testing.T) {
	cfg, err := LoadSources([]byte(`[DEFAULT]
ifo = H1

[channels-range]
channels = %(ifo)s:DMT-A,%(ifo)s:DMT-B
unit = Mpc
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if _, err := cfg.ResolveIFO(""); err != nil {
		t.Fatalf("ResolveIFO() error = %v", err)
	}
	if err := cfg.InterpolateSectionNames("H1"); err != nil {
		t.Fatalf("InterpolateSectionNames() error = %v", err)
	}
	written, err := cfg.ExpandChannelGroups()
	if err != nil {
		t.Fatalf("ExpandChannelGroups() error = %v", err)
	}
	if len(written) != 2 || written[0] != "H1:DMT-A" || written[1] != "H1:DMT-B" {
		t.Fatalf("written = %v, want [H1:DMT-A H1:DMT-B]", written)
	}
	for _, name := range written {
		if got, _ := cfg.Get(name, "unit"); got != "Mpc" {
			t.Fatalf("[%s] unit = %q, want Mpc", name, got)
		}
	}
	if cfg.HasSection("%(ifo)s:DMT-A") {
		t.Fatal("uninterpolated channel section was created")
	}
}

func TestLoad_ContinuationLines(t *testing.T) {
	cfg, err := LoadSources([]byte("[tab-x]\nchannels = H1:DMT-A,\n    H1:DMT-B\nname = X\n"))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	list, err := cfg.GetList("tab-x", "channels")
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(list) != 2 || list[0] != "H1:DMT-A" || list[1] != "H1:DMT-B" {
		t.Fatalf("GetList() = %q, want both channels", list)
	}
	if got, _ := cfg.Get("tab-x", "name"); got != "X" {
		t.Fatalf("name = %q, want X", got)
	}
}
