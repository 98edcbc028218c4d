package shard

import (
	"fmt"

	"github.com/pkg/errors"
)

// Plan fixes how many batches every dataloader worker must yield so
// all ranks step the same number of times per epoch.
type Plan struct {
	GlobalBatchSize int
	NumBatches      int64
	WorkerBatches   int64
	NumSamples      int64
	NumShards       int
	Resampled       bool
}

var errNotEnoughShards = errors.New("number of shards must be >= total workers")

// MakePlan rounds the requested sample count to a whole number of
// batches per worker. Sequential reading requires at least one shard
// per dataloader worker of every rank; resampling lifts that bound.
func MakePlan(numSamples int64, numShards, batchSize, workers, worldSize int, resampled, floor bool) (*Plan, error) {
	if batchSize <= 0 {
		return nil, errors.Errorf("invalid batch size %d", batchSize)
	}
	if worldSize <= 0 {
		return nil, errors.Errorf("invalid world size %d", worldSize)
	}
	if numSamples <= 0 {
		return nil, errors.Errorf("invalid sample count %d", numSamples)
	}
	if !resampled && numShards < workers*worldSize {
		return nil, errors.Wrapf(errNotEnoughShards, "%d shards for %d x %d workers", numShards, worldSize, workers)
	}
	round := roundUp
	if floor {
		round = roundDown
	}
	globalBatchSize := int64(batchSize) * int64(worldSize)
	numBatches := round(numSamples, globalBatchSize)
	numWorkers := int64(workers)
	if numWorkers < 1 {
		numWorkers = 1
	}
	workerBatches := round(numBatches, numWorkers)
	numBatches = workerBatches * numWorkers
	return &Plan{
		GlobalBatchSize: int(globalBatchSize),
		NumBatches:      numBatches,
		WorkerBatches:   workerBatches,
		NumSamples:      numBatches * globalBatchSize,
		NumShards:       numShards,
		Resampled:       resampled,
	}, nil
}

func roundUp(n, d int64) int64 {
	return (n + d - 1) / d
}

func roundDown(n, d int64) int64 {
	return n / d
}

func (p Plan) DebugString() string {
	return fmt.Sprintf("plan{batches=%d x %d, samples=%d}", p.NumBatches, p.GlobalBatchSize, p.NumSamples)
}
