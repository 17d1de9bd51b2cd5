package index

import (
	"sort"
	"sync"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/pkg/errx"
)

// FlatIndex is the exact, brute-force baseline: O(n*d) per query. It is
// also the correctness reference the IVF index is checked against at
// nprobe == nlist.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	metric    entity.Metric

	ids     []entity.ChunkID // insertion order, for stable tie-breaking
	order   map[entity.ChunkID]int
	vectors map[entity.ChunkID][]float32
}

// NewFlatIndex constructs an empty flat index for the given dimension
// and metric. An invalid metric is accepted here; it is the search
// that fails on an unknown tag.
func NewFlatIndex(dimension int, metric entity.Metric) *FlatIndex {
	return &FlatIndex{
		dimension: dimension,
		metric:    metric,
		order:     make(map[entity.ChunkID]int),
		vectors:   make(map[entity.ChunkID][]float32),
	}
}

func (f *FlatIndex) Dimension() int        { return f.dimension }
func (f *FlatIndex) Metric() entity.Metric { return f.metric }

func (f *FlatIndex) Add(id entity.ChunkID, vector []float32) error {
	if len(vector) != f.dimension {
		return dimensionError(len(vector), f.dimension)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addLocked(id, vector)
	return nil
}

func (f *FlatIndex) addLocked(id entity.ChunkID, vector []float32) {
	if _, exists := f.order[id]; exists {
		f.vectors[id] = append([]float32(nil), vector...)
		return
	}
	f.order[id] = len(f.ids)
	f.ids = append(f.ids, id)
	f.vectors[id] = append([]float32(nil), vector...)
}

func (f *FlatIndex) BulkAdd(ids []entity.ChunkID, vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != f.dimension {
			return dimensionError(len(v), f.dimension)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range ids {
		f.addLocked(id, vectors[i])
	}
	return nil
}

func (f *FlatIndex) Update(id entity.ChunkID, vector []float32) error {
	if len(vector) != f.dimension {
		return dimensionError(len(vector), f.dimension)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.order[id]; !exists {
		return errx.NotFound("vector not found in index").WithDetail("chunk_id", id.String())
	}
	f.vectors[id] = append([]float32(nil), vector...)
	return nil
}

func (f *FlatIndex) Delete(id entity.ChunkID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pos, exists := f.order[id]
	if !exists {
		return errx.NotFound("vector not found in index").WithDetail("chunk_id", id.String())
	}
	delete(f.vectors, id)
	delete(f.order, id)
	f.ids = append(f.ids[:pos], f.ids[pos+1:]...)
	for i := pos; i < len(f.ids); i++ {
		f.order[f.ids[i]] = i
	}
	return nil
}

func (f *FlatIndex) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = nil
	f.order = make(map[entity.ChunkID]int)
	f.vectors = make(map[entity.ChunkID][]float32)
}

func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Search returns the top-k results by score, scanning in insertion order
// so ties break stably. k == 0 yields an empty result; k greater than
// the corpus size yields the whole corpus.
func (f *FlatIndex) Search(query []float32, k int) ([]Result, error) {
	if len(query) != f.dimension {
		return nil, dimensionError(len(query), f.dimension)
	}
	if !ValidMetric(f.metric) {
		return nil, errx.Validation("unknown metric").WithDetail("metric", string(f.metric))
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return rankByScore(f.metric, f.ids, f.vectors, query, k)
}

// rankByScore scores every (id, vector) pair in ids against query under
// metric and returns the top-k, stable on ties because ids is already
// in insertion order and sort.SliceStable preserves that order for
// equal scores.
func rankByScore(metric entity.Metric, ids []entity.ChunkID, vectors map[entity.ChunkID][]float32, query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return []Result{}, nil
	}
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		s, err := score(metric, query, vectors[id])
		if err != nil {
			return nil, err
		}
		results = append(results, Result{ID: id, Score: s})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func dimensionError(got, want int) error {
	return errx.DimensionMismatch("vector dimension does not match index dimension").
		WithDetail("got", got).
		WithDetail("want", want)
}
