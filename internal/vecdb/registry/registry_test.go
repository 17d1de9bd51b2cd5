package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/store"
)

func setupLibraryWithChunks(t *testing.T, st *store.Store, dim int, n int) entity.Library {
	t.Helper()
	lib, err := st.CreateLibrary(entity.Library{
		ID:        entity.NewLibraryID(),
		Name:      "lib",
		IndexType: entity.IndexVariantFlat,
		IndexConfig: entity.IndexConfig{
			Metric: entity.MetricCosine,
		},
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	doc, err := st.CreateDocument(entity.Document{ID: entity.NewDocumentID(), LibraryID: lib.ID})
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		vec := make([]float32, dim)
		vec[0] = float32(i)
		_, err := st.CreateChunk(entity.Chunk{
			ID:         entity.NewChunkID(),
			DocumentID: doc.ID,
			Embedding:  vec,
		})
		require.NoError(t, err)
	}
	return lib
}

func TestGetIndex_EmptyLibraryErrors(t *testing.T) {
	st := store.New()
	reg := New(st)
	lib, err := st.CreateLibrary(entity.Library{ID: entity.NewLibraryID(), Name: "empty"})
	require.NoError(t, err)

	_, err = reg.GetIndex(lib.ID)
	assert.Error(t, err)
}

func TestGetIndex_BuildsAndCaches(t *testing.T) {
	st := store.New()
	reg := New(st)
	lib := setupLibraryWithChunks(t, st, 2, 3)

	idx1, err := reg.GetIndex(lib.ID)
	require.NoError(t, err)
	idx2, err := reg.GetIndex(lib.ID)
	require.NoError(t, err)
	assert.Same(t, idx1, idx2, "an undirtied index must not be rebuilt")
}

func TestMarkDirty_TriggersRebuildOnNextGetIndex(t *testing.T) {
	st := store.New()
	reg := New(st)
	lib := setupLibraryWithChunks(t, st, 2, 3)

	first, err := reg.GetIndex(lib.ID)
	require.NoError(t, err)

	reg.MarkDirty(lib.ID)
	second, err := reg.GetIndex(lib.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestGetIndex_DimensionMismatchAcrossChunksErrors(t *testing.T) {
	st := store.New()
	reg := New(st)
	lib, err := st.CreateLibrary(entity.Library{ID: entity.NewLibraryID(), Name: "lib"})
	require.NoError(t, err)
	doc, err := st.CreateDocument(entity.Document{ID: entity.NewDocumentID(), LibraryID: lib.ID})
	require.NoError(t, err)
	_, err = st.CreateChunk(entity.Chunk{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 2}})
	require.NoError(t, err)
	_, err = st.CreateChunk(entity.Chunk{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 2, 3}})
	require.NoError(t, err)

	_, err = reg.GetIndex(lib.ID)
	assert.Error(t, err)
}

func TestForget_DropsCachedIndex(t *testing.T) {
	st := store.New()
	reg := New(st)
	lib := setupLibraryWithChunks(t, st, 2, 2)

	first, err := reg.GetIndex(lib.ID)
	require.NoError(t, err)

	reg.Forget(lib.ID)
	rebuilt, err := reg.GetIndex(lib.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	require.NoError(t, st.DeleteLibrary(lib.ID))

	lib2 := setupLibraryWithChunks(t, st, 2, 2)
	second, err := reg.GetIndex(lib2.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
