package summary

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tjma12/gwsumm/internal/cli/shared"
	pipeline "github.com/tjma12/gwsumm/internal/summary"
)

// WatchCommand regenerates the site whenever configuration or CSV data
// changes.
func WatchCommand(opts *options) *ffcli.Command {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	opts.bind(fs)

	return &ffcli.Command{
		Name:       "watch",
		ShortUsage: "gwsumm watch -f <file> [flags]",
		ShortHelp:  "Regenerate the site when configuration or data changes.",
		LongHelp: `Generate once, then watch the configuration files and the CSV data
directory. Writes and creates trigger a new run; changes that arrive while a
run is in progress are collapsed into one follow-up run. Stop with Ctrl-C.

Examples:
  gwsumm watch -f h1.ini -o ./public
  gwsumm watch -f h1.ini --day 20140101 -o ./public -v`,
		FlagSet:   fs,
		UsageFunc: shared.DefaultUsageFunc,
		Exec: func(ctx context.Context, args []string) error {
			logger := shared.NewCommandLogger(opts.verbose)
			req, err := opts.request(logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = pipeline.Watch(ctx, pipeline.WatchRequest{
				Generate: pipeline.GenerateRequest{Request: req},
				OnResult: func(result *pipeline.GenerateResult, err error) {
					if err != nil {
						logger.Error("generation failed", "error", err)
						return
					}
					printResult(os.Stdout, result)
				},
			})
			return wrapErr("gwsumm watch", err)
		},
	}
}
