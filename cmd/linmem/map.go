package main

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newMapCmd())
}

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map [log]",
		Short: "Replay a request log and dump every segment as JSON",
		Long: `The map command replays a request log and writes a JSON object describing
the final address range: summary totals followed by every segment, allocated
or free, in address order. Offsets in the map always start at 0.

Example:
  linmem map requests.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, args)
		},
	}
	return cmd
}

func runMap(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	result, err := replayInput(cmd, args, logger)
	if err != nil {
		return err
	}

	writer := jwriter.NewWriter()
	result.Metadata.PrintDetailedMap(&writer)

	return writeJSON(cmd, &writer)
}

func writeJSON(cmd *cobra.Command, writer *jwriter.Writer) error {
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "failed to build json output")
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(writer.Bytes()); err != nil {
		return errors.Wrap(err, "failed to write json output")
	}
	_, err := out.Write([]byte("\n"))
	return errors.Wrap(err, "failed to write json output")
}
