package query_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/linmem/query"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

func replay(t *testing.T, input string, options query.Options) string {
	t.Helper()

	log, err := query.Parse(strings.NewReader(input))
	require.NoError(t, err)

	options.Validate = true
	result, err := query.Run(context.Background(), discardLogger(), log, options)
	require.NoError(t, err)
	require.Len(t, result.Responses, log.AllocationCount())

	var out bytes.Buffer
	require.NoError(t, query.WriteResponses(&out, result.Responses))
	return out.String()
}

func TestRunScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		base  int
		want  string
	}{
		{
			name:  "fragmented range",
			input: "10 5 5 3 -1 2 6",
			want:  "0\n5\n0\n-1\n",
		},
		{
			name:  "one-based offsets",
			input: "6 8 2 3 -1 3 3 -5 2 2",
			base:  1,
			want:  "1\n3\n-1\n-1\n1\n-1\n",
		},
		{
			name:  "free of a failed allocation is ignored",
			input: "4 4 8 -1 4 1",
			want:  "-1\n0\n-1\n",
		},
		{
			name:  "free of a free is ignored",
			input: "4 5 4 -1 -2 4 1",
			want:  "0\n0\n-1\n",
		},
		{
			name:  "repeated free is ignored",
			input: "4 6 2 -1 -1 2 2 1",
			want:  "0\n0\n2\n-1\n",
		},
		{
			name:  "no queries",
			input: "100 0",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, replay(t, tt.input, query.Options{Base: tt.base}))
		})
	}
}

func TestRunLeavesUnfreedAllocationsLive(t *testing.T) {
	log, err := query.Parse(strings.NewReader("10 3 4 3 -1"))
	require.NoError(t, err)

	result, err := query.Run(context.Background(), discardLogger(), log, query.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Metadata.AllocationCount())
	require.Equal(t, 7, result.Metadata.SumFreeSize())
}

func TestRunCancelled(t *testing.T) {
	log, err := query.Parse(strings.NewReader("10 2 1 1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = query.Run(ctx, discardLogger(), log, query.Options{})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRunRejectsHandBuiltForwardReference(t *testing.T) {
	log := query.Log{
		MemorySize: 10,
		Queries:    []query.Query{query.FreeRequest{TargetIndex: 3}},
	}

	_, err := query.Run(context.Background(), discardLogger(), log, query.Options{})
	require.True(t, errors.Is(err, query.ErrMalformedLog))
}
