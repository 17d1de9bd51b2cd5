// Package registry implements the index registry: one vector index per
// library, dirty-set tracking, lazy rebuild, and per-library
// serialization.
package registry

import (
	"sync"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/index"
	"github.com/Abraxas-365/vectordb/pkg/errx"
	"github.com/Abraxas-365/vectordb/pkg/logx"
)

// VectorIndex is the common surface the registry and the search
// coordinator need from either concrete index, hiding the flat/IVF
// distinction (and the IVF seed) behind a single interface.
type VectorIndex interface {
	Search(query []float32, k int) ([]index.Result, error)
	Add(id entity.ChunkID, vector []float32) error
	Update(id entity.ChunkID, vector []float32) error
	Delete(id entity.ChunkID) error
	Size() int
	Dimension() int
}

// LibraryStore is the subset of the entity store the registry needs:
// reachable-chunk collection for rebuilds and library lookup for index
// configuration.
type LibraryStore interface {
	ListChunksByLibrary(id entity.LibraryID) ([]entity.Chunk, error)
	GetLibrary(id entity.LibraryID) (entity.Library, bool)
}

// Registry holds one index per library and a dirty set. Operations are
// serialized per library via a lock-per-library map; a small global
// mutex only ever guards that map and the index/dirty maps themselves,
// so reads against different libraries proceed in parallel.
type Registry struct {
	store LibraryStore

	globalMu sync.Mutex
	libLocks map[entity.LibraryID]*sync.Mutex
	indexes  map[entity.LibraryID]VectorIndex
	dirty    map[entity.LibraryID]bool
}

// New constructs a registry backed by store.
func New(store LibraryStore) *Registry {
	return &Registry{
		store:    store,
		libLocks: make(map[entity.LibraryID]*sync.Mutex),
		indexes:  make(map[entity.LibraryID]VectorIndex),
		dirty:    make(map[entity.LibraryID]bool),
	}
}

// MarkDirty is idempotent; called by the entity services whenever an
// embedding is added, changed, or removed from a library.
func (r *Registry) MarkDirty(libID entity.LibraryID) {
	r.globalMu.Lock()
	defer r.globalMu.Unlock()
	r.dirty[libID] = true
	logx.WithField("library_id", libID.String()).Debug("index marked dirty")
}

// Forget drops any index and dirty flag for a library, called when the
// library itself is deleted.
func (r *Registry) Forget(libID entity.LibraryID) {
	r.globalMu.Lock()
	defer r.globalMu.Unlock()
	delete(r.indexes, libID)
	delete(r.dirty, libID)
	delete(r.libLocks, libID)
}

func (r *Registry) libraryLock(libID entity.LibraryID) *sync.Mutex {
	r.globalMu.Lock()
	defer r.globalMu.Unlock()
	l, ok := r.libLocks[libID]
	if !ok {
		l = &sync.Mutex{}
		r.libLocks[libID] = l
	}
	return l
}

// GetIndex returns the library's index, constructing or rebuilding it
// if absent or dirty.
func (r *Registry) GetIndex(libID entity.LibraryID) (VectorIndex, error) {
	lock := r.libraryLock(libID)
	lock.Lock()
	defer lock.Unlock()

	r.globalMu.Lock()
	idx, exists := r.indexes[libID]
	isDirty := r.dirty[libID]
	r.globalMu.Unlock()

	if exists && !isDirty {
		return idx, nil
	}

	built, err := r.build(libID)
	if err != nil {
		return nil, err
	}

	r.globalMu.Lock()
	r.indexes[libID] = built
	delete(r.dirty, libID)
	r.globalMu.Unlock()

	logx.WithField("library_id", libID.String()).Info("index (re)built")
	return built, nil
}

func (r *Registry) build(libID entity.LibraryID) (VectorIndex, error) {
	lib, ok := r.store.GetLibrary(libID)
	if !ok {
		return nil, errx.NotFound("library not found").WithDetail("library_id", libID.String())
	}

	chunks, err := r.store.ListChunksByLibrary(libID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, errx.EmptyLibrary("library has no chunks to index").
			WithDetail("library_id", libID.String())
	}

	dim := len(chunks[0].Embedding)
	for _, c := range chunks[1:] {
		if len(c.Embedding) != dim {
			return nil, errx.DimensionMismatch("chunks in library disagree on embedding dimension").
				WithDetail("library_id", libID.String())
		}
	}

	metric := lib.IndexConfig.Metric
	if metric == "" {
		metric = entity.MetricCosine
	}

	ids := make([]entity.ChunkID, len(chunks))
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		vectors[i] = c.Embedding
	}

	switch lib.IndexType {
	case entity.IndexVariantIVF:
		nlist := lib.IndexConfig.NList
		if nlist <= 0 {
			nlist = index.DefaultNList(len(chunks))
		}
		nprobe := lib.IndexConfig.NProbe
		if nprobe <= 0 {
			nprobe = 1
		}
		if nprobe > nlist {
			nprobe = nlist
		}
		ivfIdx, err := index.NewIVFIndex(dim, index.IVFConfig{
			NList:  nlist,
			NProbe: nprobe,
			Metric: metric,
			Seed:   index.LibrarySeed(libID),
		})
		if err != nil {
			return nil, err
		}
		if err := ivfIdx.BulkAdd(ids, vectors); err != nil {
			return nil, err
		}
		if err := ivfIdx.Build(index.LibrarySeed(libID)); err != nil {
			return nil, err
		}
		return &ivfAdapter{idx: ivfIdx, seed: index.LibrarySeed(libID)}, nil

	default:
		flatIdx := index.NewFlatIndex(dim, metric)
		if err := flatIdx.BulkAdd(ids, vectors); err != nil {
			return nil, err
		}
		return flatIdx, nil
	}
}

// ivfAdapter binds a fixed build seed to *index.IVFIndex so it
// satisfies VectorIndex's Search(query, k) signature without exposing
// the seed argument at the registry boundary.
type ivfAdapter struct {
	idx  *index.IVFIndex
	seed int64
}

func (a *ivfAdapter) Search(query []float32, k int) ([]index.Result, error) {
	return a.idx.Search(query, k, a.seed)
}
func (a *ivfAdapter) Add(id entity.ChunkID, vector []float32) error    { return a.idx.Add(id, vector) }
func (a *ivfAdapter) Update(id entity.ChunkID, vector []float32) error { return a.idx.Update(id, vector) }
func (a *ivfAdapter) Delete(id entity.ChunkID) error                  { return a.idx.Delete(id) }
func (a *ivfAdapter) Size() int                                       { return a.idx.Size() }
func (a *ivfAdapter) Dimension() int                                  { return a.idx.Dimension() }
