package utils

import (
	"runtime"
	"sync"
)

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree > maxIndex {
		ParallelDegree = maxIndex
	}
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into pm.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// ParallelFor runs fn(k) for every k in [0, maxIndex), split across
// ParallelDegree goroutines with a barrier at the end. ParallelDegree <= 0
// means GOMAXPROCS; ParallelDegree == 1 runs on the calling goroutine in
// index order, which is the bit-reproducible mode.
func ParallelFor(ParallelDegree, maxIndex int, fn func(k int)) {
	if maxIndex <= 0 {
		return
	}
	if ParallelDegree <= 0 {
		ParallelDegree = runtime.GOMAXPROCS(0)
	}
	pm := NewPartitionMap(ParallelDegree, maxIndex)
	if pm.ParallelDegree == 1 {
		for k := 0; k < maxIndex; k++ {
			fn(k)
		}
		return
	}
	var wg sync.WaitGroup
	for n := 0; n < pm.ParallelDegree; n++ {
		kMin, kMax := pm.GetBucketRange(n)
		wg.Add(1)
		go func(kMin, kMax int) {
			defer wg.Done()
			for k := kMin; k < kMax; k++ {
				fn(k)
			}
		}(kMin, kMax)
	}
	wg.Wait()
}
