package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePlan(t *testing.T) {
	t.Parallel()
	// two nodes of eight GPUs, the launcher's default geometry
	p, err := MakePlan(1000000, 1000, 50, 2, 16, true, false)
	require.NoError(t, err)
	assert.Equal(t, 800, p.GlobalBatchSize)
	assert.Equal(t, int64(1250), p.NumBatches)
	assert.Equal(t, int64(625), p.WorkerBatches)
	assert.Equal(t, int64(1000000), p.NumSamples)
}

func TestMakePlanRoundsUp(t *testing.T) {
	t.Parallel()
	p, err := MakePlan(1001, 100, 50, 2, 1, true, false)
	require.NoError(t, err)
	assert.Equal(t, int64(22), p.NumBatches)
	assert.Equal(t, int64(11), p.WorkerBatches)
	assert.Equal(t, int64(1100), p.NumSamples)
}

func TestMakePlanFloors(t *testing.T) {
	t.Parallel()
	p, err := MakePlan(1001, 100, 50, 2, 1, true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.NumBatches)
	assert.Equal(t, int64(1000), p.NumSamples)
}

func TestMakePlanShardBound(t *testing.T) {
	t.Parallel()
	_, err := MakePlan(1000000, 31, 50, 2, 16, false, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNotEnoughShards)

	_, err = MakePlan(1000000, 32, 50, 2, 16, false, false)
	require.NoError(t, err)

	// resampling lifts the bound
	_, err = MakePlan(1000000, 31, 50, 2, 16, true, false)
	require.NoError(t, err)
}

func TestMakePlanZeroWorkers(t *testing.T) {
	t.Parallel()
	p, err := MakePlan(800, 10, 50, 0, 16, true, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.NumBatches)
	assert.Equal(t, int64(1), p.WorkerBatches)
}

func TestMakePlanInvalid(t *testing.T) {
	t.Parallel()
	_, err := MakePlan(0, 10, 50, 2, 16, true, false)
	assert.Error(t, err)
	_, err = MakePlan(100, 10, 0, 2, 16, true, false)
	assert.Error(t, err)
	_, err = MakePlan(100, 10, 50, 2, 0, true, false)
	assert.Error(t, err)
}
