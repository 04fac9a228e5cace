package tabs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/tjma12/gwsumm/internal/config"
)

var (
	markdownOnce     sync.Once
	markdownRenderer goldmark.Markdown
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownRenderer = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		)
	})
	return markdownRenderer
}

// RenderMarkdown converts markdown source to HTML. Raw HTML in the source
// is dropped.
func RenderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// TextTab renders markdown given inline or read from a file.
type TextTab struct {
	Base
	File   string
	Source string
	HTML   template.HTML
}

func newTextTab(cfg *config.Config, section string, base Base) (Tab, error) {
	tab := &TextTab{Base: base}
	if cfg.Has(section, "file") {
		file, err := cfg.Get(section, "file")
		if err != nil {
			return nil, err
		}
		tab.File = resolveConfigPath(cfg, strings.TrimSpace(file))
	}
	if cfg.Has(section, "content") {
		content, err := cfg.Get(section, "content")
		if err != nil {
			return nil, err
		}
		tab.Source = content
	}
	if tab.File == "" && tab.Source == "" {
		return nil, &config.NoOptionError{Section: section, Option: "file"}
	}
	return tab, nil
}

func resolveConfigPath(cfg *config.Config, path string) string {
	if path == "" || filepath.IsAbs(path) || len(cfg.Files) == 0 {
		return path
	}
	return filepath.Join(filepath.Dir(cfg.Files[0]), path)
}

// Process implements Tab.
func (t *TextTab) Process(ctx context.Context, env *Env) error {
	source := t.Source
	if t.File != "" {
		data, err := os.ReadFile(t.File)
		if err != nil {
			return fmt.Errorf("read text: %w", err)
		}
		source = string(data)
	}
	rendered, err := RenderMarkdown(source)
	if err != nil {
		return err
	}
	t.HTML = rendered
	return nil
}

// Content implements Tab.
func (t *TextTab) Content() (template.HTML, error) {
	return t.HTML, nil
}
