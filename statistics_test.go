package linmem_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/linmem"
)

func TestDetailedStatisticsAccumulate(t *testing.T) {
	var first linmem.DetailedStatistics
	first.Clear()
	first.RangeCount++
	first.RangeBytes += 100
	first.AddAllocation(30)
	first.AddFreeSegment(50)
	first.AddFreeSegment(20)

	require.Equal(t, 70, first.FreeBytes())
	require.InDelta(t, 1-50.0/70.0, first.Fragmentation(), 1e-9)

	var second linmem.DetailedStatistics
	second.Clear()
	second.RangeCount++
	second.RangeBytes += 10
	second.AddAllocation(10)

	var total linmem.DetailedStatistics
	total.Clear()
	total.AddDetailedStatistics(&first)
	total.AddDetailedStatistics(&second)

	require.Equal(t, linmem.DetailedStatistics{
		Statistics: linmem.Statistics{
			RangeCount:      2,
			AllocationCount: 2,
			RangeBytes:      110,
			AllocationBytes: 40,
		},
		FreeSegmentCount:   2,
		AllocationSizeMin:  10,
		AllocationSizeMax:  30,
		FreeSegmentSizeMin: 20,
		FreeSegmentSizeMax: 50,
	}, total)
}

func TestDetailedStatisticsEmpty(t *testing.T) {
	var stats linmem.DetailedStatistics
	stats.Clear()

	require.Equal(t, math.MaxInt, stats.AllocationSizeMin)
	require.Equal(t, math.MaxInt, stats.FreeSegmentSizeMin)
	require.Zero(t, stats.Fragmentation())
}

func TestCheckPositive(t *testing.T) {
	require.NoError(t, linmem.CheckPositive(1, "size"))

	err := linmem.CheckPositive(0, "size")
	require.True(t, errors.Is(err, linmem.ErrInvalidSize))
	require.Contains(t, err.Error(), "size is 0")

	err = linmem.CheckPositive(int64(-4), "count")
	require.True(t, errors.Is(err, linmem.ErrInvalidSize))
}
