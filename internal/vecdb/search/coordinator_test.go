package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/registry"
	"github.com/Abraxas-365/vectordb/internal/vecdb/store"
)

func setup(t *testing.T) (*store.Store, *registry.Registry, *Coordinator, entity.Library, entity.Document) {
	t.Helper()
	st := store.New()
	reg := registry.New(st)
	coord := New(reg, st)

	lib, err := st.CreateLibrary(entity.Library{
		ID:          entity.NewLibraryID(),
		Name:        "lib",
		IndexType:   entity.IndexVariantFlat,
		IndexConfig: entity.IndexConfig{Metric: entity.MetricCosine},
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	doc, err := st.CreateDocument(entity.Document{ID: entity.NewDocumentID(), LibraryID: lib.ID})
	require.NoError(t, err)
	return st, reg, coord, lib, doc
}

func TestSearch_ExactCosineMatch(t *testing.T) {
	st, reg, coord, lib, doc := setup(t)

	a, err := st.CreateChunk(entity.Chunk{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 0}})
	require.NoError(t, err)
	reg.MarkDirty(lib.ID)
	_, err = st.CreateChunk(entity.Chunk{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{0, 1}})
	require.NoError(t, err)
	reg.MarkDirty(lib.ID)

	resp, err := coord.Search(lib.ID, []float32{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, a.ID, resp.Results[0].ChunkID)
	assert.InDelta(t, 1.0, resp.Results[0].Score, 1e-6)
}

func TestSearch_DimensionMismatchRejected(t *testing.T) {
	st, reg, coord, lib, doc := setup(t)
	_, err := st.CreateChunk(entity.Chunk{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 0}})
	require.NoError(t, err)
	reg.MarkDirty(lib.ID)

	_, err = coord.Search(lib.ID, []float32{1, 0, 0}, 1, nil)
	assert.Error(t, err)
}

func TestSearch_KOutOfRangeRejected(t *testing.T) {
	_, _, coord, lib, _ := setup(t)
	_, err := coord.Search(lib.ID, []float32{1, 0}, 0, nil)
	assert.Error(t, err)
	_, err = coord.Search(lib.ID, []float32{1, 0}, 10000, nil)
	assert.Error(t, err)
}

func TestSearch_DeclarativeFilterNarrowsResults(t *testing.T) {
	st, reg, coord, lib, doc := setup(t)
	_, err := st.CreateChunk(entity.Chunk{
		ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 0},
		Metadata: entity.Metadata{"section": "setup"},
	})
	require.NoError(t, err)
	b, err := st.CreateChunk(entity.Chunk{
		ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{0.9, 0.1},
		Metadata: entity.Metadata{"section": "troubleshooting"},
	})
	require.NoError(t, err)
	reg.MarkDirty(lib.ID)

	leafFilter, err := entity.NewMetadataFilter("section", entity.OpEquals, "troubleshooting")
	require.NoError(t, err)
	g, err := entity.NewFilterGroup(entity.LogicalAnd, leafFilter)
	require.NoError(t, err)

	resp, err := coord.Search(lib.ID, []float32{1, 0}, 5, &entity.SearchFilters{Metadata: g})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, b.ID, resp.Results[0].ChunkID)
}

func TestSearch_CustomPredicateTakesPrecedenceOverDeclarative(t *testing.T) {
	st, reg, coord, lib, doc := setup(t)
	a, err := st.CreateChunk(entity.Chunk{
		ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 0},
		Metadata: entity.Metadata{"section": "setup"},
	})
	require.NoError(t, err)
	reg.MarkDirty(lib.ID)

	leafFilter, err := entity.NewMetadataFilter("section", entity.OpEquals, "nonexistent")
	require.NoError(t, err)
	g, err := entity.NewFilterGroup(entity.LogicalAnd, leafFilter)
	require.NoError(t, err)

	bundle := &entity.SearchFilters{
		Metadata:     g, // would exclude everything if it were consulted
		CustomFilter: func(c entity.Chunk) bool { return true },
	}
	resp, err := coord.Search(lib.ID, []float32{1, 0}, 5, bundle)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, a.ID, resp.Results[0].ChunkID)
}

// A custom predicate that accepts everything must return every chunk,
// even though the bundle's declarative tech-only filter would have
// excluded the two sports chunks.
func TestSearch_CustomPredicateIgnoresDeclarativeEntirely(t *testing.T) {
	st, reg, coord, lib, doc := setup(t)

	categories := []string{"tech", "tech", "tech", "sports", "sports"}
	for i, cat := range categories {
		_, err := st.CreateChunk(entity.Chunk{
			ID: entity.NewChunkID(), DocumentID: doc.ID,
			Embedding: []float32{float32(i), 1},
			Metadata:  entity.Metadata{"category": cat},
		})
		require.NoError(t, err)
	}
	reg.MarkDirty(lib.ID)

	leafFilter, err := entity.NewMetadataFilter("category", entity.OpEquals, "tech")
	require.NoError(t, err)
	g, err := entity.NewFilterGroup(entity.LogicalAnd, leafFilter)
	require.NoError(t, err)

	resp, err := coord.Search(lib.ID, []float32{1, 1}, 10, &entity.SearchFilters{
		Metadata:     g,
		CustomFilter: func(c entity.Chunk) bool { return true },
	})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 5)
}

func TestSearch_DirtyRebuildAfterMutationReflectsNewData(t *testing.T) {
	st, reg, coord, lib, doc := setup(t)
	_, err := st.CreateChunk(entity.Chunk{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 0}})
	require.NoError(t, err)
	reg.MarkDirty(lib.ID)

	resp, err := coord.Search(lib.ID, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	second, err := st.CreateChunk(entity.Chunk{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1, 0}})
	require.NoError(t, err)
	reg.MarkDirty(lib.ID)

	resp, err = coord.Search(lib.ID, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	found := false
	for _, r := range resp.Results {
		if r.ChunkID == second.ID {
			found = true
		}
	}
	assert.True(t, found)
}
