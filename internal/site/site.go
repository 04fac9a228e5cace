package site

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tjma12/gwsumm/internal/tabs"
	"github.com/tjma12/gwsumm/internal/timerange"
)

// IndexFile is the page file written into every tab directory.
const IndexFile = "index.html"

// EnsureDir creates path and any parents. An existing directory is left
// untouched.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// Writer renders tab pages under OutputDir.
type Writer struct {
	OutputDir string
	Resources Resources
	IFO       string
	Span      timerange.Span
	Mode      timerange.Mode

	// Nav is the sorted root list with sorted children.
	Nav    []tabs.Tab
	About  *tabs.AboutTab
	Logger *slog.Logger

	// Now stamps the page footer; defaults to time.Now.
	Now func() time.Time
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now().UTC()
	}
	return w.Now().UTC()
}

// WriteAll writes the about page first and then every declared tab. It
// returns the written files relative to OutputDir.
func (w *Writer) WriteAll(declared []tabs.Tab) ([]string, error) {
	var written []string
	pages := declared
	if w.About != nil {
		pages = append([]tabs.Tab{w.About}, declared...)
	}
	for _, tab := range pages {
		rel, err := w.WritePage(tab)
		if err != nil {
			return written, err
		}
		written = append(written, rel)
	}
	if len(w.Nav) > 0 {
		if err := w.WriteIndex(); err != nil {
			return written, err
		}
		written = append(written, IndexFile)
	}
	return written, nil
}

// WritePage ensures the tab directory exists and renders its page.
func (w *Writer) WritePage(tab tabs.Tab) (string, error) {
	info := tab.Info()
	dir := filepath.Join(w.OutputDir, filepath.FromSlash(info.Path()))
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	content, err := tab.Content()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "base", w.pageData(info, content)); err != nil {
		return "", fmt.Errorf("render page %q: %w", info.Name, err)
	}
	target := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write page %q: %w", info.Name, err)
	}
	rel := info.Path() + "/" + IndexFile
	w.logger().Debug("page written", "tab", info.Name, "file", rel)
	return rel, nil
}

// WriteIndex writes a root page redirecting to the first navigation tab.
func (w *Writer) WriteIndex() error {
	if len(w.Nav) == 0 {
		return fmt.Errorf("write index: no tabs")
	}
	if err := EnsureDir(w.OutputDir); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "redirect", w.Nav[0].Info().Path()+"/"); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.OutputDir, IndexFile), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

type navLink struct {
	Name   string
	Href   string
	Active bool
}

type navItem struct {
	navLink
	Children []navLink
}

type pageData struct {
	Title      string
	Heading    string
	IFO        string
	Mode       string
	Interval   string
	CSS        []string
	JavaScript []string
	Nav        []navItem
	About      string
	Content    template.HTML
	Generated  string
}

func (w *Writer) pageData(info *tabs.Base, content template.HTML) pageData {
	root := info.RelRoot()
	data := pageData{
		Title:      strings.TrimSpace(fmt.Sprintf("%s %s", w.IFO, info.Name)),
		Heading:    info.Name,
		IFO:        w.IFO,
		Mode:       w.Mode.String(),
		Interval:   describeSpan(w.Mode, w.Span),
		CSS:        resolveAll(root, w.Resources.CSS),
		JavaScript: resolveAll(root, w.Resources.JavaScript),
		Content:    content,
		Generated:  w.now().Format("2006-01-02 15:04:05 MST"),
	}
	if w.About != nil {
		data.About = root + w.About.Path() + "/"
	}
	current := info.Path()
	for _, tab := range w.Nav {
		rootInfo := tab.Info()
		item := navItem{navLink: navLink{
			Name:   rootInfo.ShortName,
			Href:   root + rootInfo.Path() + "/",
			Active: current == rootInfo.Path() || strings.HasPrefix(current, rootInfo.Path()+"/"),
		}}
		for _, child := range rootInfo.Children {
			childInfo := child.Info()
			item.Children = append(item.Children, navLink{
				Name:   childInfo.ShortName,
				Href:   root + childInfo.Path() + "/",
				Active: current == childInfo.Path(),
			})
		}
		data.Nav = append(data.Nav, item)
	}
	return data
}

// resolveAll leaves absolute URLs alone and makes site-relative ones
// relative to the page.
func resolveAll(root string, urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		if parsed, err := url.Parse(raw); err == nil && (parsed.IsAbs() || strings.HasPrefix(raw, "/")) {
			out = append(out, raw)
			continue
		}
		out = append(out, root+strings.TrimPrefix(raw, "./"))
	}
	return out
}

func describeSpan(mode timerange.Mode, span timerange.Span) string {
	start := span.StartUTC()
	switch mode {
	case timerange.ModeDay:
		return start.Format("January 2 2006")
	case timerange.ModeWeek:
		return "Week of " + start.Format("January 2 2006")
	case timerange.ModeMonth:
		return start.Format("January 2006")
	case timerange.ModeYear:
		return start.Format("2006")
	default:
		return fmt.Sprintf("%d-%d", span.Start, span.End)
	}
}
