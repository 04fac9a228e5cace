// Package summary wires the gwsumm command tree.
package summary

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tjma12/gwsumm/internal/cli/shared"
	pipeline "github.com/tjma12/gwsumm/internal/summary"
	"github.com/tjma12/gwsumm/internal/timerange"
)

// EnvVarPrefix prefixes environment variables that set flags, e.g.
// GWSUMM_IFO=L1.
const EnvVarPrefix = "GWSUMM"

// options are the pipeline flags shared by the root command and every
// subcommand that loads configuration.
type options struct {
	verbose     bool
	profile     bool
	ifo         string
	configFiles shared.StringList
	outputDir   string
	day         string
	week        string
	month       string
	year        string
	gpsStart    int64
	gpsEnd      int64
}

func (o *options) bind(fs *flag.FlagSet) {
	fs.BoolVar(&o.verbose, "v", false, "Log debug detail")
	fs.BoolVar(&o.verbose, "verbose", false, "Log debug detail")
	fs.BoolVar(&o.profile, "p", false, "Add elapsed time to progress logs")
	fs.BoolVar(&o.profile, "profile", false, "Add elapsed time to progress logs")
	fs.StringVar(&o.ifo, "i", "", "Interferometer prefix, overrides [DEFAULT] ifo")
	fs.StringVar(&o.ifo, "ifo", "", "Interferometer prefix, overrides [DEFAULT] ifo")
	fs.Var(&o.configFiles, "f", "INI configuration file (repeatable, merged in order)")
	fs.Var(&o.configFiles, "config-file", "INI configuration file (repeatable, merged in order)")
	fs.StringVar(&o.outputDir, "o", ".", "Output directory")
	fs.StringVar(&o.outputDir, "output-dir", ".", "Output directory")
	fs.StringVar(&o.day, "day", "", "Process one UTC day (YYYYMMDD)")
	fs.StringVar(&o.week, "week", "", "Process the week starting on a day (YYYYMMDD)")
	fs.StringVar(&o.month, "month", "", "Process one month (YYYYMM)")
	fs.StringVar(&o.year, "year", "", "Process one year (YYYY)")
	fs.Int64Var(&o.gpsStart, "s", 0, "GPS start time (with --gps-end-time)")
	fs.Int64Var(&o.gpsStart, "gps-start-time", 0, "GPS start time (with --gps-end-time)")
	fs.Int64Var(&o.gpsEnd, "e", 0, "GPS end time (with --gps-start-time)")
	fs.Int64Var(&o.gpsEnd, "gps-end-time", 0, "GPS end time (with --gps-start-time)")
}

// request validates the flags and builds a pipeline request. A missing
// --config-file is reported on stderr and returned as flag.ErrHelp.
func (o *options) request(logger *slog.Logger) (pipeline.Request, error) {
	if len(o.configFiles) == 0 {
		fmt.Fprintln(os.Stderr, "Error: --config-file is required")
		return pipeline.Request{}, flag.ErrHelp
	}
	return pipeline.Request{
		ConfigFiles: append([]string(nil), o.configFiles...),
		IFO:         strings.TrimSpace(o.ifo),
		OutputDir:   o.outputDir,
		Selection: timerange.Selection{
			Day:      strings.TrimSpace(o.day),
			Week:     strings.TrimSpace(o.week),
			Month:    strings.TrimSpace(o.month),
			Year:     strings.TrimSpace(o.year),
			GPSStart: o.gpsStart,
			GPSEnd:   o.gpsEnd,
		},
		Logger:  logger,
		Profile: o.profile,
	}, nil
}

// prepare loads configuration and registries without writing output.
func (o *options) prepare(ctx context.Context) (*pipeline.Run, error) {
	req, err := o.request(shared.NewCommandLogger(o.verbose))
	if err != nil {
		return nil, err
	}
	return pipeline.Prepare(ctx, req)
}

// RootCommand returns the gwsumm command tree.
func RootCommand(version string) *ffcli.Command {
	fs := flag.NewFlagSet("gwsumm", flag.ExitOnError)
	opts := &options{}
	opts.bind(fs)
	var showVersion bool
	fs.BoolVar(&showVersion, "V", false, "Print the version and exit")
	fs.BoolVar(&showVersion, "version", false, "Print the version and exit")

	return &ffcli.Command{
		Name:       "gwsumm",
		ShortUsage: "gwsumm [flags] [<subcommand>]",
		ShortHelp:  "Build gravitational-wave detector summary pages.",
		LongHelp: `Build a static HTML summary site for one interferometer and time span.

Configuration is read from one or more INI files, merged in order. The span
is chosen with exactly one of --day, --week, --month, --year, or the
--gps-start-time/--gps-end-time pair; with none, today (UTC) is used.
Every flag can also be set from a GWSUMM_* environment variable.

Examples:
  gwsumm -f h1.ini --day 20140101 -o ./public
  gwsumm -f defaults.ini -f h1.ini --ifo L1 --month 201401
  gwsumm -f h1.ini -s 1072569616 -e 1072656016
  gwsumm tabs -f h1.ini --output json
  gwsumm watch -f h1.ini -o ./public`,
		FlagSet:   fs,
		Options:   []ff.Option{ff.WithEnvVarPrefix(EnvVarPrefix)},
		UsageFunc: shared.DefaultUsageFunc,
		Subcommands: []*ffcli.Command{
			TabsCommand(opts),
			ChannelsCommand(opts),
			StatesCommand(opts),
			WatchCommand(opts),
		},
		Exec: func(ctx context.Context, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "gwsumm %s\n", version)
				return nil
			}
			if len(args) > 0 {
				return fmt.Errorf("gwsumm: unexpected arguments: %s", strings.Join(args, " "))
			}
			req, err := opts.request(shared.NewCommandLogger(opts.verbose))
			if err != nil {
				return err
			}
			result, err := pipeline.Generate(ctx, pipeline.GenerateRequest{
				Request:  req,
				Progress: pipeline.TerminalProgress(os.Stderr),
			})
			if err != nil {
				return fmt.Errorf("gwsumm: %w", err)
			}
			printResult(os.Stdout, result)
			return nil
		},
	}
}

func printResult(w io.Writer, result *pipeline.GenerateResult) {
	elapsed := time.Duration(result.DurationMS) * time.Millisecond
	fmt.Fprintf(w, "Wrote %s pages and %s plots for %s %s [%d, %d) to %s in %s\n",
		humanize.Comma(int64(len(result.Pages))),
		humanize.Comma(int64(result.Plots)),
		result.IFO,
		result.Mode,
		result.GPSStart,
		result.GPSEnd,
		result.OutputDir,
		elapsed.Round(time.Millisecond),
	)
}
