package main

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/linmem"
	"github.com/vkngwrapper/linmem/query"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	statsJSON bool
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [log]",
		Short: "Replay a request log and summarize the final state of the address range",
		Long: `The stats command replays a request log and reports how many requests
succeeded and how the address range is laid out afterward: allocated and free
units, free segment sizes and how fragmented the free space is.

Example:
  linmem stats requests.txt
  linmem stats requests.txt --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args)
		},
	}
	return cmd
}

type replayStats struct {
	linmem.DetailedStatistics
	Succeeded int
	Failed    int
}

func collectStats(result *query.Result) replayStats {
	var stats replayStats
	stats.Clear()
	result.Metadata.AddDetailedStatistics(&stats.DetailedStatistics)

	for _, response := range result.Responses {
		if response.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}

	return stats
}

func runStats(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	result, err := replayInput(cmd, args, logger)
	if err != nil {
		return err
	}

	stats := collectStats(result)
	if statsJSON {
		return writeStatsJSON(cmd, stats)
	}

	var buf bytes.Buffer
	p := message.NewPrinter(language.English)

	p.Fprintf(&buf, "Address range:          %d units\n", stats.RangeBytes)
	p.Fprintf(&buf, "Allocation requests:    %d (%d succeeded, %d failed)\n",
		stats.Succeeded+stats.Failed, stats.Succeeded, stats.Failed)
	p.Fprintf(&buf, "Live allocations:       %d\n", stats.AllocationCount)
	p.Fprintf(&buf, "Allocated units:        %d\n", stats.AllocationBytes)
	p.Fprintf(&buf, "Free units:             %d\n", stats.FreeBytes())
	p.Fprintf(&buf, "Free segments:          %d\n", stats.FreeSegmentCount)
	if stats.FreeSegmentCount > 0 {
		p.Fprintf(&buf, "Free segment sizes:     %d - %d\n", stats.FreeSegmentSizeMin, stats.FreeSegmentSizeMax)
	}
	if stats.AllocationCount > 0 {
		p.Fprintf(&buf, "Allocation sizes:       %d - %d\n", stats.AllocationSizeMin, stats.AllocationSizeMax)
	}
	p.Fprintf(&buf, "Fragmentation:          %.1f%%\n", stats.Fragmentation()*100)

	if _, err := buf.WriteTo(cmd.OutOrStdout()); err != nil {
		return errors.Wrap(err, "failed to write stats")
	}
	return nil
}

func writeStatsJSON(cmd *cobra.Command, stats replayStats) error {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	obj.Name("TotalBytes").Int(stats.RangeBytes)
	obj.Name("Succeeded").Int(stats.Succeeded)
	obj.Name("Failed").Int(stats.Failed)
	obj.Name("Allocations").Int(stats.AllocationCount)
	obj.Name("AllocatedBytes").Int(stats.AllocationBytes)
	obj.Name("UnusedBytes").Int(stats.FreeBytes())
	obj.Name("UnusedRanges").Int(stats.FreeSegmentCount)
	if stats.FreeSegmentCount > 0 {
		obj.Name("UnusedRangeSizeMin").Int(stats.FreeSegmentSizeMin)
		obj.Name("UnusedRangeSizeMax").Int(stats.FreeSegmentSizeMax)
	}
	if stats.AllocationCount > 0 {
		obj.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		obj.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
	obj.Name("Fragmentation").Float64(stats.Fragmentation())
	obj.End()

	return writeJSON(cmd, &writer)
}
