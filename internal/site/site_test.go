package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tjma12/gwsumm/internal/config"
	"github.com/tjma12/gwsumm/internal/tabs"
	"github.com/tjma12/gwsumm/internal/timerange"
)

func TestEnsureDir_IsIdempotentAndKeepsContents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "summary", "range")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	keep := filepath.Join(dir, "index.html")
	if err := os.WriteFile(keep, []byte("existing"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() second call error = %v", err)
	}
	data, err := os.ReadFile(keep)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "existing" {
		t.Fatalf("contents changed to %q", data)
	}
}

func TestResourcesFromConfig_AppendsNumberedEntries(t *testing.T) {
	cfg, err := config.LoadSources([]byte(`
[html]
javascript2 = js/second.js
css1 = https://example.org/extra.css
javascript1 = js/first.js
title = ignored
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	res, err := ResourcesFromConfig(cfg)
	if err != nil {
		t.Fatalf("ResourcesFromConfig() error = %v", err)
	}
	defaults := DefaultResources()
	if len(res.CSS) != len(defaults.CSS)+1 || res.CSS[len(res.CSS)-1] != "https://example.org/extra.css" {
		t.Fatalf("CSS = %v", res.CSS)
	}
	tail := res.JavaScript[len(defaults.JavaScript):]
	if len(tail) != 2 || tail[0] != "js/first.js" || tail[1] != "js/second.js" {
		t.Fatalf("JavaScript tail = %v", tail)
	}
}

func TestWriter_WriteAll(t *testing.T) {
	cfg, err := config.LoadSources([]byte(`
[tab-zeta]
name = Zeta
type = text
content = zeta

[tab-summary]
name = Summary
type = text
content = **hello**

[tab-range]
name = Range
parent = Summary
type = text
content = range
`))
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	declared, err := tabs.Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	roots, err := tabs.Link(declared)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	env := &tabs.Env{Config: cfg}
	if err := tabs.ProcessAll(context.Background(), env, declared, nil); err != nil {
		t.Fatalf("ProcessAll() error = %v", err)
	}

	out := t.TempDir()
	writer := &Writer{
		OutputDir: out,
		Resources: Resources{CSS: []string{"https://cdn.example.org/site.css", "static/local.css"}},
		IFO:       "H1",
		Span:      timerange.Span{Start: 1072569616, End: 1072656016},
		Mode:      timerange.ModeDay,
		Nav:       tabs.SortTree(roots),
		About:     tabs.NewAboutTab(),
		Now:       func() time.Time { return time.Date(2014, 1, 2, 0, 0, 0, 0, time.UTC) },
	}
	written, err := writer.WriteAll(declared)
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	want := []string{"about/index.html", "zeta/index.html", "summary/index.html", "summary/range/index.html", "index.html"}
	if strings.Join(written, ",") != strings.Join(want, ",") {
		t.Fatalf("written = %v, want %v", written, want)
	}

	page, err := os.ReadFile(filepath.Join(out, "summary", "range", "index.html"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	html := string(page)
	for _, fragment := range []string{
		`href="https://cdn.example.org/site.css"`,
		`href="../../static/local.css"`,
		`href="../../summary/range/"`,
		`href="../../about/"`,
		"January 1 2014",
		"<h1>Range</h1>",
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("page missing %q:\n%s", fragment, html)
		}
	}
	if strings.Index(html, ">Summary<") > strings.Index(html, ">Zeta<") {
		t.Fatal("navigation not in display order")
	}

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(index), "url=summary/") {
		t.Fatalf("index does not redirect to summary: %s", index)
	}
}
