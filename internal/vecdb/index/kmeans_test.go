package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
)

func TestRunKMeans_DeterministicGivenSameSeed(t *testing.T) {
	vectors := [][]float32{{0, 0}, {0, 1}, {10, 10}, {10, 11}}
	a := runKMeans(vectors, 2, entity.MetricEuclidean, 99)
	b := runKMeans(vectors, 2, entity.MetricEuclidean, 99)
	assert.Equal(t, a.assignment, b.assignment)
}

func TestRunKMeans_ClustersNearbyPointsTogether(t *testing.T) {
	vectors := [][]float32{{0, 0}, {0, 1}, {10, 10}, {10, 11}}
	result := runKMeans(vectors, 2, entity.MetricEuclidean, 7)
	assert.Equal(t, result.assignment[0], result.assignment[1])
	assert.Equal(t, result.assignment[2], result.assignment[3])
	assert.NotEqual(t, result.assignment[0], result.assignment[2])
}

func TestLibrarySeed_DeterministicPerLibrary(t *testing.T) {
	id := entity.NewLibraryID()
	assert.Equal(t, LibrarySeed(id), LibrarySeed(id))
}

func TestLibrarySeed_DiffersAcrossLibraries(t *testing.T) {
	a, b := entity.NewLibraryID(), entity.NewLibraryID()
	assert.NotEqual(t, LibrarySeed(a), LibrarySeed(b))
}
