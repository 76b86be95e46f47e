package query_test

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/linmem"
	"github.com/vkngwrapper/linmem/query"
)

func TestParse(t *testing.T) {
	log, err := query.Parse(strings.NewReader("6 8\n2\n3\n-1\n3\n3\n-5\n2\n2\n"))
	require.NoError(t, err)

	require.Equal(t, query.Log{
		MemorySize: 6,
		Queries: []query.Query{
			query.AllocationRequest{Size: 2},
			query.AllocationRequest{Size: 3},
			query.FreeRequest{TargetIndex: 0},
			query.AllocationRequest{Size: 3},
			query.AllocationRequest{Size: 3},
			query.FreeRequest{TargetIndex: 4},
			query.AllocationRequest{Size: 2},
			query.AllocationRequest{Size: 2},
		},
	}, log)
	require.Equal(t, 6, log.AllocationCount())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "empty input", input: "", wantMsg: "memory size"},
		{name: "missing count", input: "10", wantMsg: "query count"},
		{name: "zero memory", input: "0 0", wantMsg: "memory size"},
		{name: "negative count", input: "10 -1", wantMsg: "query count is -1"},
		{name: "truncated log", input: "10 3 1 2", wantMsg: "query 2"},
		{name: "not an integer", input: "10 2 1 abc", wantMsg: `"abc"`},
		{name: "zero query", input: "10 2 1 0", wantMsg: "query 1 is zero"},
		{name: "free of itself", input: "10 2 1 -2", wantMsg: "frees query 1"},
		{name: "free of the future", input: "10 2 -3 1", wantMsg: "frees query 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := query.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			require.True(t, errors.Is(err, query.ErrMalformedLog))
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseZeroMemoryIsInvalidSize(t *testing.T) {
	_, err := query.Parse(strings.NewReader("0 0"))
	require.True(t, errors.Is(err, linmem.ErrInvalidSize))
}
