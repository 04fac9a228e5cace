package summary

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tjma12/gwsumm/internal/cli/shared"
	"github.com/tjma12/gwsumm/internal/tabs"
)

type tabRow struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Path   string   `json:"path"`
	Parent string   `json:"parent,omitempty"`
	States []string `json:"states"`
}

// TabsCommand prints the linked tab tree.
func TabsCommand(opts *options) *ffcli.Command {
	fs := flag.NewFlagSet("tabs", flag.ExitOnError)
	opts.bind(fs)
	output := shared.BindOutputFlag(fs)

	return &ffcli.Command{
		Name:       "tabs",
		ShortUsage: "gwsumm tabs -f <file> [flags]",
		ShortHelp:  "Print the tab tree in display order.",
		LongHelp: `Load configuration, link every [tab-*] section and print the tree in the
order it appears in the navigation bar. Nothing is fetched or written.

Examples:
  gwsumm tabs -f h1.ini
  gwsumm tabs -f h1.ini --output json`,
		FlagSet:   fs,
		UsageFunc: shared.DefaultUsageFunc,
		Exec: func(ctx context.Context, args []string) error {
			format, err := shared.ValidateOutput(*output)
			if err != nil {
				return fmt.Errorf("gwsumm tabs: %w", err)
			}
			run, err := opts.prepare(ctx)
			if err != nil {
				return wrapErr("gwsumm tabs", err)
			}
			defer run.Close()

			var rowsOut []tabRow
			var table [][]string
			tabs.Walk(run.Roots, func(tab tabs.Tab) {
				info := tab.Info()
				row := tabRow{
					Name:   info.Name,
					Type:   string(info.Kind),
					Path:   info.Path(),
					Parent: info.ParentName,
					States: info.States,
				}
				rowsOut = append(rowsOut, row)
				name := row.Name
				if !info.IsRoot() {
					name = "  " + name
				}
				table = append(table, []string{name, row.Type, row.Path + "/", strings.Join(row.States, ", ")})
			})
			return shared.Print(os.Stdout, format, rowsOut, []string{"Name", "Type", "Path", "States"}, table)
		},
	}
}

// ChannelsCommand prints the channel registry.
func ChannelsCommand(opts *options) *ffcli.Command {
	fs := flag.NewFlagSet("channels", flag.ExitOnError)
	opts.bind(fs)
	output := shared.BindOutputFlag(fs)

	return &ffcli.Command{
		Name:       "channels",
		ShortUsage: "gwsumm channels -f <file> [flags]",
		ShortHelp:  "Print every channel the configuration references.",
		LongHelp: `Print the channel registry after configuration sections, channel groups,
the catalog and every tab and state reference have been applied.

Examples:
  gwsumm channels -f h1.ini
  gwsumm channels -f h1.ini --ifo L1 --output json`,
		FlagSet:   fs,
		UsageFunc: shared.DefaultUsageFunc,
		Exec: func(ctx context.Context, args []string) error {
			format, err := shared.ValidateOutput(*output)
			if err != nil {
				return fmt.Errorf("gwsumm channels: %w", err)
			}
			run, err := opts.prepare(ctx)
			if err != nil {
				return wrapErr("gwsumm channels", err)
			}
			defer run.Close()

			all := run.Env.Channels.All()
			table := make([][]string, 0, len(all))
			for _, ch := range all {
				rate := ""
				if ch.SampleRate > 0 {
					rate = humanize.Ftoa(ch.SampleRate) + " Hz"
				}
				table = append(table, []string{ch.Name, ch.Unit, rate, ch.Type, ch.Description})
			}
			return shared.Print(os.Stdout, format, all, []string{"Name", "Unit", "Sample Rate", "Type", "Description"}, table)
		},
	}
}

// StatesCommand prints the state registry.
func StatesCommand(opts *options) *ffcli.Command {
	fs := flag.NewFlagSet("states", flag.ExitOnError)
	opts.bind(fs)
	output := shared.BindOutputFlag(fs)

	return &ffcli.Command{
		Name:       "states",
		ShortUsage: "gwsumm states -f <file> [flags]",
		ShortHelp:  "Print the configured states.",
		LongHelp: `Print every state: the built-in All state followed by each [state-*]
section in declaration order.

Examples:
  gwsumm states -f h1.ini
  gwsumm states -f h1.ini --output json`,
		FlagSet:   fs,
		UsageFunc: shared.DefaultUsageFunc,
		Exec: func(ctx context.Context, args []string) error {
			format, err := shared.ValidateOutput(*output)
			if err != nil {
				return fmt.Errorf("gwsumm states: %w", err)
			}
			run, err := opts.prepare(ctx)
			if err != nil {
				return wrapErr("gwsumm states", err)
			}
			defer run.Close()

			all := run.Env.States.All()
			table := make([][]string, 0, len(all))
			for _, state := range all {
				definition := state.Definition
				if state.IsAll() {
					definition = "(entire span)"
				}
				table = append(table, []string{state.Name, state.Key, definition})
			}
			return shared.Print(os.Stdout, format, all, []string{"Name", "Key", "Definition"}, table)
		},
	}
}

// wrapErr prefixes err with the command name, leaving flag.ErrHelp bare so
// the caller prints usage.
func wrapErr(command string, err error) error {
	if err == nil || err == flag.ErrHelp {
		return err
	}
	return fmt.Errorf("%s: %w", command, err)
}
