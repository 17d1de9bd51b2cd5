package index

import (
	"sort"
	"sync"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/pkg/errx"
)

// IVFConfig holds the validated construction parameters for an IVF
// index. MaxIterations is stored on the index (zero is replaced by
// kmeansMaxIterations, 25), but every build runs runKMeans with the
// kmeansMaxIterations cap; another MaxIterations value does not change
// the iteration count.
type IVFConfig struct {
	NList         int
	NProbe        int
	Metric        entity.Metric
	Seed          int64
	MaxIterations int
}

// DefaultNList derives the default cluster count: max(1, floor(sqrt(n))).
func DefaultNList(n int) int {
	v := int(isqrt(n))
	if v < 1 {
		return 1
	}
	return v
}

func isqrt(n int) int64 {
	if n <= 0 {
		return 0
	}
	x := int64(n)
	r := x
	for {
		next := (r + x/r) / 2
		if next >= r {
			return r
		}
		r = next
	}
}

// IVFIndex is the clustered approximate index: k-means partitioning,
// centroid-probing, lazy build. Structured around a centroid list plus
// a cluster->members map and a reverse vector->cluster map, the same
// three-structure shape used by IVF implementations across the
// ecosystem.
type IVFIndex struct {
	mu        sync.RWMutex
	dimension int
	config    IVFConfig

	built bool

	ids     []entity.ChunkID
	order   map[entity.ChunkID]int
	vectors map[entity.ChunkID][]float32

	centroids       [][]float32
	clusters        map[int][]entity.ChunkID
	vectorToCluster map[entity.ChunkID]int
}

// NewIVFIndex validates config and constructs an empty, unbuilt index.
func NewIVFIndex(dimension int, config IVFConfig) (*IVFIndex, error) {
	if config.NList <= 0 {
		return nil, errx.Validation("nlist must be a positive integer")
	}
	if config.NProbe <= 0 {
		return nil, errx.Validation("nprobe must be a positive integer")
	}
	if !ValidMetric(config.Metric) {
		return nil, errx.Validation("unknown metric").WithDetail("metric", string(config.Metric))
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = kmeansMaxIterations
	}
	return &IVFIndex{
		dimension:       dimension,
		config:          config,
		order:           make(map[entity.ChunkID]int),
		vectors:         make(map[entity.ChunkID][]float32),
		clusters:        make(map[int][]entity.ChunkID),
		vectorToCluster: make(map[entity.ChunkID]int),
	}, nil
}

func (ix *IVFIndex) Dimension() int        { return ix.dimension }
func (ix *IVFIndex) Metric() entity.Metric { return ix.config.Metric }
func (ix *IVFIndex) IsBuilt() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.built
}

// Add stores the raw vector. Before the first build it is simply held;
// after build it is assigned to its nearest centroid without
// rebalancing.
func (ix *IVFIndex) Add(id entity.ChunkID, vector []float32) error {
	if len(vector) != ix.dimension {
		return dimensionError(len(vector), ix.dimension)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.addLocked(id, vector)
	if ix.built {
		ix.assignLocked(id, vector)
	}
	return nil
}

func (ix *IVFIndex) addLocked(id entity.ChunkID, vector []float32) {
	if _, exists := ix.order[id]; !exists {
		ix.order[id] = len(ix.ids)
		ix.ids = append(ix.ids, id)
	}
	ix.vectors[id] = append([]float32(nil), vector...)
}

func (ix *IVFIndex) assignLocked(id entity.ChunkID, vector []float32) {
	best, bestScore := 0, float32(0)
	for c, centroid := range ix.centroids {
		s, _ := score(ix.config.Metric, vector, centroid)
		if c == 0 || s > bestScore {
			best, bestScore = c, s
		}
	}
	ix.clusters[best] = append(ix.clusters[best], id)
	ix.vectorToCluster[id] = best
}

func (ix *IVFIndex) BulkAdd(ids []entity.ChunkID, vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != ix.dimension {
			return dimensionError(len(v), ix.dimension)
		}
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, id := range ids {
		ix.addLocked(id, vectors[i])
	}
	return nil
}

// Update detaches the vector from its cluster and re-assigns it to the
// nearest centroid.
func (ix *IVFIndex) Update(id entity.ChunkID, vector []float32) error {
	if len(vector) != ix.dimension {
		return dimensionError(len(vector), ix.dimension)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, exists := ix.order[id]; !exists {
		return errx.NotFound("vector not found in index").WithDetail("chunk_id", id.String())
	}
	if ix.built {
		ix.detachLocked(id)
	}
	ix.vectors[id] = append([]float32(nil), vector...)
	if ix.built {
		ix.assignLocked(id, vector)
	}
	return nil
}

func (ix *IVFIndex) Delete(id entity.ChunkID) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	pos, exists := ix.order[id]
	if !exists {
		return errx.NotFound("vector not found in index").WithDetail("chunk_id", id.String())
	}
	if ix.built {
		ix.detachLocked(id)
	}
	delete(ix.vectors, id)
	delete(ix.order, id)
	ix.ids = append(ix.ids[:pos], ix.ids[pos+1:]...)
	for i := pos; i < len(ix.ids); i++ {
		ix.order[ix.ids[i]] = i
	}
	return nil
}

func (ix *IVFIndex) detachLocked(id entity.ChunkID) {
	c, ok := ix.vectorToCluster[id]
	if !ok {
		return
	}
	members := ix.clusters[c]
	for i, m := range members {
		if m == id {
			ix.clusters[c] = append(members[:i], members[i+1:]...)
			break
		}
	}
	delete(ix.vectorToCluster, id)
}

func (ix *IVFIndex) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ids = nil
	ix.order = make(map[entity.ChunkID]int)
	ix.vectors = make(map[entity.ChunkID][]float32)
	ix.centroids = nil
	ix.clusters = make(map[int][]entity.ChunkID)
	ix.vectorToCluster = make(map[entity.ChunkID]int)
	ix.built = false
}

func (ix *IVFIndex) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Build runs k-means over the current vector set and marks the index
// built. Called lazily by Search.
func (ix *IVFIndex) Build(seed int64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.buildLocked(seed)
}

func (ix *IVFIndex) buildLocked(seed int64) error {
	if len(ix.ids) == 0 {
		ix.built = true
		return nil
	}
	vectors := make([][]float32, len(ix.ids))
	for i, id := range ix.ids {
		vectors[i] = ix.vectors[id]
	}

	result := runKMeans(vectors, ix.config.NList, ix.config.Metric, seed)

	ix.centroids = result.centroids
	ix.clusters = make(map[int][]entity.ChunkID, len(result.centroids))
	ix.vectorToCluster = make(map[entity.ChunkID]int, len(ix.ids))
	for i, id := range ix.ids {
		c := result.assignment[i]
		ix.clusters[c] = append(ix.clusters[c], id)
		ix.vectorToCluster[id] = c
	}
	ix.built = true
	return nil
}

// Search probes the nprobe nearest centroids to the query, unions their
// members, ranks by score, and returns the top-k. An empty index yields
// an empty result; empty clusters contribute no members and are skipped
// naturally.
func (ix *IVFIndex) Search(query []float32, k int, seed int64) ([]Result, error) {
	if len(query) != ix.dimension {
		return nil, dimensionError(len(query), ix.dimension)
	}
	if !ValidMetric(ix.config.Metric) {
		return nil, errx.Validation("unknown metric").WithDetail("metric", string(ix.config.Metric))
	}

	ix.mu.Lock()
	if !ix.built {
		if err := ix.buildLocked(seed); err != nil {
			ix.mu.Unlock()
			return nil, err
		}
	}
	ix.mu.Unlock()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.ids) == 0 {
		return []Result{}, nil
	}
	if k <= 0 {
		return []Result{}, nil
	}

	nprobe := ix.config.NProbe
	if nprobe > len(ix.centroids) {
		nprobe = len(ix.centroids)
	}

	type centroidScore struct {
		idx   int
		score float32
	}
	cscores := make([]centroidScore, 0, len(ix.centroids))
	for c, centroid := range ix.centroids {
		s, _ := score(ix.config.Metric, query, centroid)
		cscores = append(cscores, centroidScore{idx: c, score: s})
	}
	sort.SliceStable(cscores, func(i, j int) bool { return cscores[i].score > cscores[j].score })
	if nprobe > len(cscores) {
		nprobe = len(cscores)
	}

	// candidateIDs preserves global insertion order across the probed
	// clusters so ties break the same way a flat scan would.
	inCandidate := make(map[entity.ChunkID]bool)
	for _, cs := range cscores[:nprobe] {
		for _, id := range ix.clusters[cs.idx] {
			inCandidate[id] = true
		}
	}
	candidateIDs := make([]entity.ChunkID, 0, len(inCandidate))
	for _, id := range ix.ids {
		if inCandidate[id] {
			candidateIDs = append(candidateIDs, id)
		}
	}

	return rankByScore(ix.config.Metric, candidateIDs, ix.vectors, query, k)
}
