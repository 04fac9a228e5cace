package tabs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dustin/go-humanize"

	"github.com/tjma12/gwsumm/internal/states"
)

// AboutName is the name of the synthetic about tab.
const AboutName = "About"

// ConfigFile is one configuration file shown on the about page.
type ConfigFile struct {
	Path      string
	Name      string
	Size      string
	Highlight template.HTML
}

// AboutTab describes how the pages were generated.
type AboutTab struct {
	Base
	Files        []ConfigFile
	StateList    []*states.State
	ChannelCount int
	Span         string
	Mode         string
}

// NewAboutTab returns the parent-less about tab, scoped to the All state.
func NewAboutTab() *AboutTab {
	return &AboutTab{Base: Base{
		Name:      AboutName,
		ShortName: AboutName,
		Kind:      KindAbout,
		States:    []string{states.AllName},
	}}
}

// Process implements Tab.
func (t *AboutTab) Process(ctx context.Context, env *Env) error {
	t.Files = t.Files[:0]
	for _, path := range env.Config.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		highlighted, err := HighlightINI(string(data))
		if err != nil {
			return err
		}
		t.Files = append(t.Files, ConfigFile{
			Path:      path,
			Name:      filepath.Base(path),
			Size:      humanize.Bytes(uint64(len(data))),
			Highlight: highlighted,
		})
	}
	if env.States != nil {
		t.StateList = env.States.All()
	}
	if env.Channels != nil {
		t.ChannelCount = env.Channels.Len()
	}
	t.Span = env.Span.String()
	t.Mode = env.Mode.String()
	return nil
}

// HighlightINI renders INI source as inline-styled HTML.
func HighlightINI(source string) (template.HTML, error) {
	lexer := lexers.Get("ini")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("highlight config: %w", err)
	}
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(false)).Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("highlight config: %w", err)
	}
	return template.HTML(buf.String()), nil
}

const aboutTemplate = `<h2>Time interval</h2>
<p>{{.Mode}}: {{.Span}}</p>
<h2>States</h2>
<table class="table table-sm">
<thead><tr><th>Name</th><th>Definition</th></tr></thead>
<tbody>
{{range .States}}<tr><td>{{.Name}}</td><td>{{if .Definition}}<code>{{.Definition}}</code>{{else}}whole interval{{end}}</td></tr>
{{end}}</tbody>
</table>
<p>{{.ChannelCount}} registered.</p>
<h2>Configuration files</h2>
{{range .Files}}<h3 title="{{.Path}}">{{.Name}} <small class="text-muted">{{.Size}}</small></h3>
{{.Highlight}}
{{else}}<p>No configuration files.</p>
{{end}}`

var aboutPage = template.Must(template.New("about").Parse(aboutTemplate))

// Content implements Tab.
func (t *AboutTab) Content() (template.HTML, error) {
	var buf bytes.Buffer
	err := aboutPage.Execute(&buf, map[string]any{
		"Mode":         t.Mode,
		"Span":         t.Span,
		"States":       t.StateList,
		"ChannelCount": humanize.Comma(int64(t.ChannelCount)) + " " + plural(t.ChannelCount, "channel", "channels"),
		"Files":        t.Files,
	})
	if err != nil {
		return "", fmt.Errorf("render about tab: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
