package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
)

func TestNewIVFIndex_ValidatesConfig(t *testing.T) {
	_, err := NewIVFIndex(2, IVFConfig{NList: 0, NProbe: 1, Metric: entity.MetricCosine})
	assert.Error(t, err)

	_, err = NewIVFIndex(2, IVFConfig{NList: 1, NProbe: 0, Metric: entity.MetricCosine})
	assert.Error(t, err)

	_, err = NewIVFIndex(2, IVFConfig{NList: 1, NProbe: 1, Metric: "bogus"})
	assert.Error(t, err)
}

// At nprobe == nlist, the IVF index must probe every cluster, so its
// top-k ranking matches a flat exact scan exactly.
func TestIVFIndex_FullProbeMatchesFlatIndex(t *testing.T) {
	vectors := map[entity.ChunkID][]float32{}
	ids := make([]entity.ChunkID, 0, 12)
	for i := 0; i < 12; i++ {
		id := mustChunkID()
		ids = append(ids, id)
		v := []float32{float32(i), float32(12 - i)}
		vectors[id] = v
	}

	flat := NewFlatIndex(2, entity.MetricCosine)
	for _, id := range ids {
		require.NoError(t, flat.Add(id, vectors[id]))
	}

	ivf, err := NewIVFIndex(2, IVFConfig{NList: 4, NProbe: 4, Metric: entity.MetricCosine, Seed: 42})
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, ivf.Add(id, vectors[id]))
	}
	require.NoError(t, ivf.Build(42))

	query := []float32{3, 9}
	flatResults, err := flat.Search(query, 5)
	require.NoError(t, err)
	ivfResults, err := ivf.Search(query, 5, 42)
	require.NoError(t, err)

	require.Len(t, ivfResults, len(flatResults))
	for i := range flatResults {
		assert.Equal(t, flatResults[i].ID, ivfResults[i].ID)
		assert.InDelta(t, flatResults[i].Score, ivfResults[i].Score, 1e-5)
	}
}

func TestIVFIndex_LazyBuildOnFirstSearch(t *testing.T) {
	ivf, err := NewIVFIndex(1, IVFConfig{NList: 2, NProbe: 2, Metric: entity.MetricCosine})
	require.NoError(t, err)
	require.NoError(t, ivf.Add(mustChunkID(), []float32{1}))
	require.NoError(t, ivf.Add(mustChunkID(), []float32{-1}))

	assert.False(t, ivf.IsBuilt())
	_, err = ivf.Search([]float32{1}, 1, 7)
	require.NoError(t, err)
	assert.True(t, ivf.IsBuilt())
}

func TestIVFIndex_EmptyIndexSearchReturnsEmpty(t *testing.T) {
	ivf, err := NewIVFIndex(1, IVFConfig{NList: 2, NProbe: 2, Metric: entity.MetricCosine})
	require.NoError(t, err)
	results, err := ivf.Search([]float32{1}, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIVFIndex_DimensionMismatchRejected(t *testing.T) {
	ivf, err := NewIVFIndex(3, IVFConfig{NList: 1, NProbe: 1, Metric: entity.MetricCosine})
	require.NoError(t, err)
	_, err = ivf.Search([]float32{1, 2}, 1, 1)
	assert.Error(t, err)
}

// nlist larger than the vector count degrades to one cluster per
// vector rather than failing the build.
func TestIVFIndex_NListLargerThanCorpusDegradesToSingletonClusters(t *testing.T) {
	ivf, err := NewIVFIndex(1, IVFConfig{NList: 10, NProbe: 10, Metric: entity.MetricEuclidean})
	require.NoError(t, err)

	a, b, c := mustChunkID(), mustChunkID(), mustChunkID()
	require.NoError(t, ivf.Add(a, []float32{0}))
	require.NoError(t, ivf.Add(b, []float32{5}))
	require.NoError(t, ivf.Add(c, []float32{10}))

	results, err := ivf.Search([]float32{4}, 3, 11)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, b, results[0].ID)
}

func TestDefaultNList(t *testing.T) {
	assert.Equal(t, 1, DefaultNList(0))
	assert.Equal(t, 1, DefaultNList(3))
	assert.Equal(t, 10, DefaultNList(100))
}
