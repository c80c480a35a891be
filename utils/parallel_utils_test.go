package utils

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Balanced split with at most one item of imbalance
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				histo[pm.GetBucketDimension(np)]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
	}
	{ // Degree above the index count collapses to one item per bucket
		pm := NewPartitionMap(64, 8)
		assert.Equal(t, 8, pm.ParallelDegree)
	}
	{ // Buckets tile [0, MaxIndex) contiguously
		pm := NewPartitionMap(5, 17)
		next := 0
		for n := 0; n < pm.ParallelDegree; n++ {
			kMin, kMax := pm.GetBucketRange(n)
			assert.Equal(t, next, kMin)
			next = kMax
		}
		assert.Equal(t, 17, next)
	}
}

func TestParallelFor(t *testing.T) {
	{ // Every index visited exactly once for a range of degrees
		for _, degree := range []int{0, 1, 2, 7, 16} {
			visits := make([]int32, 100)
			ParallelFor(degree, len(visits), func(k int) {
				atomic.AddInt32(&visits[k], 1)
			})
			for k, n := range visits {
				assert.Equal(t, int32(1), n, "index %d, degree %d", k, degree)
			}
		}
	}
	{ // Degree 1 runs in ascending index order
		var order []int
		ParallelFor(1, 10, func(k int) { order = append(order, k) })
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	}
	{ // Empty range is a no-op
		called := false
		ParallelFor(4, 0, func(k int) { called = true })
		assert.False(t, called)
	}
}
