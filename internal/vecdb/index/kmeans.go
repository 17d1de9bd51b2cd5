package index

import (
	"context"
	"math/rand"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/pkg/asyncx"
)

// kmeansMaxIterations bounds a build's iteration count; builds stop
// earlier when no assignment changes.
const kmeansMaxIterations = 25

// kmeansResult is the outcome of partitioning a vector set into nlist
// clusters: one centroid per cluster and, for every input vector by
// position, the cluster it was assigned to.
type kmeansResult struct {
	centroids  [][]float32
	assignment []int
}

// runKMeans partitions vectors into nlist clusters (capped at len(vectors))
// using the given metric for nearest-centroid assignment. seed makes
// initialization deterministic: callers derive it from the library
// identity, never wall-clock time, so the same chunk set always yields
// the same partition.
func runKMeans(vectors [][]float32, nlist int, metric entity.Metric, seed int64) kmeansResult {
	n := len(vectors)
	if nlist > n {
		nlist = n
	}
	if nlist < 1 {
		nlist = 1
	}

	rng := rand.New(rand.NewSource(seed))
	dim := len(vectors[0])

	// Uniform random initialization from distinct indices: simple,
	// deterministic given seed, good enough for the scale this index
	// targets.
	perm := rng.Perm(n)
	centroids := make([][]float32, nlist)
	for c := 0; c < nlist; c++ {
		centroids[c] = append([]float32(nil), vectors[perm[c]]...)
	}

	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best, bestScore := 0, float32(0)
			for c, centroid := range centroids {
				s, _ := score(metric, v, centroid)
				if c == 0 || s > bestScore {
					best, bestScore = c, s
				}
			}
			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}

		newCentroids := recomputeCentroids(vectors, assignment, nlist, dim)
		centroids = newCentroids

		if !changed {
			break
		}
	}

	return kmeansResult{centroids: centroids, assignment: assignment}
}

// recomputeCentroids averages the member vectors of each cluster in
// parallel; each cluster's mean is independent of the others within an
// iteration, the shape asyncx.Map is built for. A cluster left without
// members gets a zero centroid, which search tolerates as an empty
// cluster.
func recomputeCentroids(vectors [][]float32, assignment []int, nlist, dim int) [][]float32 {
	members := make([][]int, nlist)
	for i, c := range assignment {
		members[c] = append(members[c], i)
	}

	indices := make([]int, nlist)
	for c := range indices {
		indices[c] = c
	}

	out, _ := asyncx.Map(context.Background(), indices, func(_ context.Context, c int) ([]float32, error) {
		idxs := members[c]
		if len(idxs) == 0 {
			return make([]float32, dim), nil
		}
		sum := make([]float64, dim)
		for _, i := range idxs {
			v := vectors[i]
			for d := 0; d < dim; d++ {
				sum[d] += float64(v[d])
			}
		}
		mean := make([]float32, dim)
		for d := 0; d < dim; d++ {
			mean[d] = float32(sum[d] / float64(len(idxs)))
		}
		return mean, nil
	})
	return out
}

// LibrarySeed derives a deterministic int64 seed from a library
// identity's low 8 bytes.
func LibrarySeed(id entity.LibraryID) int64 {
	var v int64
	for i := 8; i < 16; i++ {
		v = v<<8 | int64(id[i])
	}
	return v
}
