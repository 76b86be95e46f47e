package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/linmem/query"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	verbose  bool
	base     int
	validate bool
)

var rootCmd = &cobra.Command{
	Use:   "linmem",
	Short: "Replay allocate/free request logs against a linear address-space allocator",
	Long: `linmem manages a fixed-size linear address range with a largest-fit allocator
that merges neighboring free segments as soon as they are released. It replays request
logs and reports where each allocation landed.

A request log is a sequence of whitespace-separated integers: the size of the address
range, the number of requests, then one value per request. A positive value allocates
that many units; -k frees whatever request k (1-based) allocated.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every allocation and free to stderr")
	rootCmd.PersistentFlags().IntVar(&base, "base", 0, "Offset reported for the first unit of the address range")
	rootCmd.PersistentFlags().BoolVar(&validate, "validate", false, "Check allocator consistency after every request (slow)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(w))
}

// openInput returns the named file, or the command's stdin when no file or "-" was given
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to open request log")
	}
	return f, nil
}

// replayInput parses the request log named by args and replays it
func replayInput(cmd *cobra.Command, args []string, logger *slog.Logger) (*query.Result, error) {
	in, err := openInput(cmd, args)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	log, err := query.Parse(in)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "parsed request log",
		slog.Int("memorySize", log.MemorySize),
		slog.Int("queries", len(log.Queries)))

	return query.Run(ctx, logger, log, query.Options{Base: base, Validate: validate})
}
