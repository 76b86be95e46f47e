package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vkngwrapper/linmem/query"
	"golang.org/x/exp/slog"
)

var (
	runReportUnfreed bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runReportUnfreed, "report-unfreed", false, "Log allocations still live after the last request")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [log]",
		Short: "Replay a request log and print one offset per allocation",
		Long: `The run command replays a request log and prints one line per allocation
request: the offset where the allocation starts, or -1 if no free segment was
large enough. Free requests print nothing. The log is read from stdin when no
file is given.

Example:
  linmem run requests.txt
  echo "6 8 2 3 -1 3 3 -5 2 2" | linmem run --base 1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args)
		},
	}
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	result, err := replayInput(cmd, args, logger)
	if err != nil {
		return err
	}

	if runReportUnfreed {
		result.Metadata.DebugLogAllAllocations(logger, func(log *slog.Logger, offset int, size int, userData any) {
			log.LogAttrs(context.Background(), slog.LevelWarn, "[UNRELEASED MEMORY] unfreed allocation",
				slog.Int("offset", offset+base),
				slog.Int("size", size))
		})
	}

	return query.WriteResponses(cmd.OutOrStdout(), result.Responses)
}
