// Package site writes the HTML pages of a summary run.
package site

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tjma12/gwsumm/internal/config"
)

// HTMLSection holds extra page resources as cssN / javascriptN options.
const HTMLSection = "html"

var (
	cssKey = regexp.MustCompile(`^css(\d+)$`)
	jsKey  = regexp.MustCompile(`^javascript(\d+)$`)
)

// Resources are the stylesheet and script URLs linked from every page.
type Resources struct {
	CSS        []string
	JavaScript []string
}

// DefaultResources returns the layout, icon and widget resources every
// page loads.
func DefaultResources() Resources {
	return Resources{
		CSS: []string{
			"https://cdnjs.cloudflare.com/ajax/libs/font-awesome/5.11.2/css/fontawesome.min.css",
			"https://cdnjs.cloudflare.com/ajax/libs/font-awesome/5.11.2/css/solid.min.css",
			"https://cdn.jsdelivr.net/npm/gwbootstrap@1.2.1/lib/gwbootstrap.min.css",
		},
		JavaScript: []string{
			"https://code.jquery.com/jquery-3.4.1.min.js",
			"https://code.jquery.com/ui/1.12.1/jquery-ui.min.js",
			"https://cdnjs.cloudflare.com/ajax/libs/moment.js/2.24.0/moment.min.js",
			"https://stackpath.bootstrapcdn.com/bootstrap/4.4.1/js/bootstrap.bundle.min.js",
			"https://cdnjs.cloudflare.com/ajax/libs/fancybox/3.5.7/jquery.fancybox.min.js",
			"https://cdnjs.cloudflare.com/ajax/libs/bootstrap-datepicker/1.9.0/js/bootstrap-datepicker.min.js",
			"https://cdn.jsdelivr.net/npm/gwbootstrap@1.2.1/lib/gwbootstrap-extra.min.js",
		},
	}
}

type numbered struct {
	n     int
	value string
}

// ResourcesFromConfig appends the [html] cssN and javascriptN entries, in
// numeric order, to the defaults.
func ResourcesFromConfig(cfg *config.Config) (Resources, error) {
	res := DefaultResources()
	if !cfg.HasSection(HTMLSection) {
		return res, nil
	}
	items, err := cfg.OwnItems(HTMLSection)
	if err != nil {
		return res, err
	}
	var css, js []numbered
	for _, item := range items {
		value, err := cfg.Get(HTMLSection, item.Key)
		if err != nil {
			return res, err
		}
		value = strings.TrimSpace(value)
		if m := cssKey.FindStringSubmatch(item.Key); m != nil {
			n, _ := strconv.Atoi(m[1])
			css = append(css, numbered{n: n, value: value})
		} else if m := jsKey.FindStringSubmatch(item.Key); m != nil {
			n, _ := strconv.Atoi(m[1])
			js = append(js, numbered{n: n, value: value})
		}
	}
	res.CSS = append(res.CSS, sortedValues(css)...)
	res.JavaScript = append(res.JavaScript, sortedValues(js)...)
	return res, nil
}

func sortedValues(entries []numbered) []string {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].n < entries[j].n })
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.value)
	}
	return out
}
