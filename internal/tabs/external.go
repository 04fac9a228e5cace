package tabs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/tjma12/gwsumm/internal/config"
)

// ExternalTab embeds a page hosted elsewhere.
type ExternalTab struct {
	Base
	URL *url.URL
}

func newExternalTab(cfg *config.Config, section string, base Base) (Tab, error) {
	raw, err := cfg.Get(section, "url")
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("url %q must be absolute", raw)
	}
	return &ExternalTab{Base: base, URL: parsed}, nil
}

// Process implements Tab. The content lives elsewhere.
func (t *ExternalTab) Process(ctx context.Context, env *Env) error {
	env.logger().Debug("external tab", "tab", t.Name, "url", t.URL.String())
	return nil
}

var externalPage = template.Must(template.New("external").Parse(
	`<p><a href="{{.}}" target="_blank" rel="noopener">{{.}}</a></p>
<div class="embed-responsive embed-responsive-16by9"><iframe class="embed-responsive-item" src="{{.}}"></iframe></div>
`))

// Content implements Tab.
func (t *ExternalTab) Content() (template.HTML, error) {
	var buf bytes.Buffer
	if err := externalPage.Execute(&buf, t.URL.String()); err != nil {
		return "", fmt.Errorf("render external tab %q: %w", t.Name, err)
	}
	return template.HTML(buf.String()), nil
}
