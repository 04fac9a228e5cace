// Package shared holds helpers used by every gwsumm command: usage text,
// logging, flag values and output formatting.
package shared

import (
	"flag"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v3/ffcli"
)

// DefaultUsageFunc prints the command's help with flag aliases grouped on
// one line, so -o and --output-dir are listed together.
func DefaultUsageFunc(c *ffcli.Command) string {
	var b strings.Builder

	b.WriteString("USAGE\n")
	if c.ShortUsage != "" {
		fmt.Fprintf(&b, "  %s\n", c.ShortUsage)
	} else {
		fmt.Fprintf(&b, "  %s\n", c.Name)
	}
	b.WriteString("\n")

	if help := strings.TrimSpace(c.LongHelp); help != "" {
		b.WriteString(help)
		b.WriteString("\n\n")
	} else if c.ShortHelp != "" {
		b.WriteString(c.ShortHelp)
		b.WriteString("\n\n")
	}

	if len(c.Subcommands) > 0 {
		b.WriteString("SUBCOMMANDS\n")
		tw := tabwriter.NewWriter(&b, 0, 2, 2, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.ShortHelp)
		}
		tw.Flush()
		b.WriteString("\n")
	}

	if groups := flagGroups(c.FlagSet); len(groups) > 0 {
		b.WriteString("FLAGS\n")
		tw := tabwriter.NewWriter(&b, 0, 2, 2, ' ', 0)
		for _, group := range groups {
			fmt.Fprintf(tw, "  %s\t%s\n", group.names, group.usage)
		}
		tw.Flush()
		b.WriteString("\n")
	}

	return b.String()
}

type flagGroup struct {
	names string
	usage string
}

// flagGroups merges flags that share a usage string. The short form is
// printed with one dash, the long form with two.
func flagGroups(fs *flag.FlagSet) []flagGroup {
	if fs == nil {
		return nil
	}
	byUsage := make(map[string][]*flag.Flag)
	var order []string
	fs.VisitAll(func(f *flag.Flag) {
		if _, ok := byUsage[f.Usage]; !ok {
			order = append(order, f.Usage)
		}
		byUsage[f.Usage] = append(byUsage[f.Usage], f)
	})

	groups := make([]flagGroup, 0, len(order))
	for _, usage := range order {
		flags := byUsage[usage]
		sort.SliceStable(flags, func(i, j int) bool { return len(flags[i].Name) < len(flags[j].Name) })
		names := make([]string, 0, len(flags))
		for _, f := range flags {
			if len(f.Name) == 1 {
				names = append(names, "-"+f.Name)
			} else {
				names = append(names, "--"+f.Name)
			}
		}
		label := strings.Join(names, ", ")
		if def := flags[0].DefValue; def != "" && def != "false" && def != "[]" {
			label += fmt.Sprintf(" (default %q)", def)
		}
		groups = append(groups, flagGroup{names: label, usage: usage})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return strings.TrimLeft(groups[i].names, "-") < strings.TrimLeft(groups[j].names, "-")
	})
	return groups
}
