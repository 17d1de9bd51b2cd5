package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/registry"
	"github.com/Abraxas-365/vectordb/internal/vecdb/store"
)

func newServices() *Services {
	st := store.New()
	reg := registry.New(st)
	return New(st, reg)
}

func TestLibraryService_Create_DefaultsMetricAndIndexType(t *testing.T) {
	svc := newServices()
	lib, err := svc.Libraries.Create(CreateLibraryInput{Name: "lib"})
	require.NoError(t, err)
	assert.Equal(t, entity.MetricCosine, lib.IndexConfig.Metric)
	assert.Equal(t, entity.IndexVariantFlat, lib.IndexType)
}

func TestLibraryService_Create_RejectsEmptyName(t *testing.T) {
	svc := newServices()
	_, err := svc.Libraries.Create(CreateLibraryInput{})
	assert.Error(t, err)
}

func TestDocumentService_Create_UsesGivenLibraryID(t *testing.T) {
	svc := newServices()
	lib, err := svc.Libraries.Create(CreateLibraryInput{Name: "lib"})
	require.NoError(t, err)

	doc, err := svc.Documents.Create(CreateDocumentInput{
		LibraryID: lib.ID,
		Name:      "doc",
	})
	require.NoError(t, err)
	assert.Equal(t, lib.ID, doc.LibraryID)
}

func TestChunkService_Create_RejectsEmptyEmbedding(t *testing.T) {
	svc := newServices()
	lib, err := svc.Libraries.Create(CreateLibraryInput{Name: "lib"})
	require.NoError(t, err)
	doc, err := svc.Documents.Create(CreateDocumentInput{LibraryID: lib.ID, Name: "doc"})
	require.NoError(t, err)

	_, err = svc.Chunks.Create(CreateChunkInput{DocumentID: doc.ID, Embedding: nil})
	assert.Error(t, err)

	chunk, err := svc.Chunks.Create(CreateChunkInput{DocumentID: doc.ID, Embedding: []float32{1, 2}})
	require.NoError(t, err)
	assert.NotEqual(t, entity.ChunkID{}, chunk.ID)
}

func TestChunkService_Update_ReplacesEmbeddingOnlyWhenSupplied(t *testing.T) {
	svc := newServices()
	lib, err := svc.Libraries.Create(CreateLibraryInput{Name: "lib"})
	require.NoError(t, err)
	doc, err := svc.Documents.Create(CreateDocumentInput{LibraryID: lib.ID, Name: "doc"})
	require.NoError(t, err)
	chunk, err := svc.Chunks.Create(CreateChunkInput{DocumentID: doc.ID, Embedding: []float32{1, 2}})
	require.NoError(t, err)

	updated, err := svc.Chunks.Update(UpdateChunkInput{ID: chunk.ID, Text: "new text"})
	require.NoError(t, err)
	assert.Equal(t, "new text", updated.Text)
	assert.Equal(t, []float32{1, 2}, updated.Embedding, "embedding must be untouched when not supplied")

	updated, err = svc.Chunks.Update(UpdateChunkInput{ID: chunk.ID, Embedding: []float32{9, 9}})
	require.NoError(t, err)
	assert.Equal(t, []float32{9, 9}, updated.Embedding)
}

func TestChunkService_BatchCreate_ValidatesAllBeforeCreatingAny(t *testing.T) {
	svc := newServices()
	lib, err := svc.Libraries.Create(CreateLibraryInput{Name: "lib"})
	require.NoError(t, err)
	doc, err := svc.Documents.Create(CreateDocumentInput{LibraryID: lib.ID, Name: "doc"})
	require.NoError(t, err)

	_, err = svc.Chunks.BatchCreate(doc.ID, []CreateChunkInput{
		{Embedding: []float32{1}},
		{Embedding: nil},
	})
	require.Error(t, err)

	got, err := svc.Chunks.ListByDocument(doc.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLibraryService_Delete_RemovesLibrary(t *testing.T) {
	svc := newServices()
	lib, err := svc.Libraries.Create(CreateLibraryInput{Name: "lib"})
	require.NoError(t, err)

	require.NoError(t, svc.Libraries.Delete(lib.ID))
	_, err = svc.Libraries.Get(lib.ID)
	assert.Error(t, err)
}
