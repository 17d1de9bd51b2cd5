package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
)

func newLibrary() entity.Library {
	return entity.Library{
		ID:        entity.NewLibraryID(),
		Name:      "lib",
		CreatedAt: time.Now(),
	}
}

func TestCreateLibrary_DuplicateIDConflicts(t *testing.T) {
	s := New()
	lib := newLibrary()
	_, err := s.CreateLibrary(lib)
	require.NoError(t, err)

	_, err = s.CreateLibrary(lib)
	assert.Error(t, err)
}

func TestCreateDocument_RejectsUnknownLibrary(t *testing.T) {
	s := New()
	doc := entity.Document{ID: entity.NewDocumentID(), LibraryID: entity.NewLibraryID()}
	_, err := s.CreateDocument(doc)
	assert.Error(t, err)
}

func TestDeleteLibrary_CascadesThroughDocumentsAndChunks(t *testing.T) {
	s := New()
	lib, err := s.CreateLibrary(newLibrary())
	require.NoError(t, err)

	doc, err := s.CreateDocument(entity.Document{ID: entity.NewDocumentID(), LibraryID: lib.ID, Name: "d"})
	require.NoError(t, err)

	chunk, err := s.CreateChunk(entity.Chunk{
		ID:         entity.NewChunkID(),
		DocumentID: doc.ID,
		Embedding:  []float32{1, 2, 3},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteLibrary(lib.ID))

	_, ok := s.GetLibrary(lib.ID)
	assert.False(t, ok)
	_, ok = s.GetDocument(doc.ID)
	assert.False(t, ok)
	_, ok = s.GetChunk(chunk.ID)
	assert.False(t, ok)
}

func TestDeleteDocument_DetachesFromLibrary(t *testing.T) {
	s := New()
	lib, err := s.CreateLibrary(newLibrary())
	require.NoError(t, err)
	doc, err := s.CreateDocument(entity.Document{ID: entity.NewDocumentID(), LibraryID: lib.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteDocument(doc.ID))

	updated, ok := s.GetLibrary(lib.ID)
	require.True(t, ok)
	assert.Empty(t, updated.DocumentIDs)
}

func TestBatchCreateChunks_AllOrNothing(t *testing.T) {
	s := New()
	lib, err := s.CreateLibrary(newLibrary())
	require.NoError(t, err)
	doc, err := s.CreateDocument(entity.Document{ID: entity.NewDocumentID(), LibraryID: lib.ID})
	require.NoError(t, err)

	badDocID := entity.NewDocumentID() // does not exist
	chunks := []entity.Chunk{
		{ID: entity.NewChunkID(), DocumentID: doc.ID, Embedding: []float32{1}},
		{ID: entity.NewChunkID(), DocumentID: badDocID, Embedding: []float32{2}},
	}

	_, err = s.BatchCreateChunks(chunks)
	require.Error(t, err)

	got, err := s.ListChunksByDocument(doc.ID)
	require.NoError(t, err)
	assert.Empty(t, got, "a failed batch must not leave a partial write behind")
}

func TestBatchCreateDocuments_RejectsDuplicateIDsWithinBatch(t *testing.T) {
	s := New()
	lib, err := s.CreateLibrary(newLibrary())
	require.NoError(t, err)

	id := entity.NewDocumentID()
	docs := []entity.Document{
		{ID: id, LibraryID: lib.ID},
		{ID: id, LibraryID: lib.ID},
	}
	_, err = s.BatchCreateDocuments(docs)
	assert.Error(t, err)
}

func TestUpdateChunk_PreservesParentAndCreationTime(t *testing.T) {
	s := New()
	lib, err := s.CreateLibrary(newLibrary())
	require.NoError(t, err)
	doc, err := s.CreateDocument(entity.Document{ID: entity.NewDocumentID(), LibraryID: lib.ID})
	require.NoError(t, err)

	created, err := s.CreateChunk(entity.Chunk{
		ID:         entity.NewChunkID(),
		DocumentID: doc.ID,
		Embedding:  []float32{1},
		CreatedAt:  time.Unix(0, 0),
	})
	require.NoError(t, err)

	updated, err := s.UpdateChunk(entity.Chunk{
		ID:         created.ID,
		DocumentID: entity.NewDocumentID(), // must be ignored
		Embedding:  []float32{9},
		CreatedAt:  time.Now(), // must be ignored
	})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, updated.DocumentID)
	assert.True(t, updated.CreatedAt.Equal(time.Unix(0, 0)))
	assert.Equal(t, []float32{9}, updated.Embedding)
}
