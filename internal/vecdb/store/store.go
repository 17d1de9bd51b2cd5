// Package store implements the thread-safe entity store: the exclusive
// owner of libraries, documents, and chunks, with parent-child integrity
// and cascading delete.
package store

import (
	"sync"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/pkg/errx"
	"github.com/Abraxas-365/vectordb/pkg/logx"
)

// Store owns every entity value in the process. Cascading delete
// re-enters the store's internals from within a critical section, and
// Go's sync.Mutex is not reentrant, so every public method acquires
// the lock exactly once and delegates to unexported "Locked" helpers
// that never re-acquire it. The externally observed semantics are
// identical to a reentrant mutex.
type Store struct {
	mu sync.Mutex

	libraries map[entity.LibraryID]entity.Library
	documents map[entity.DocumentID]entity.Document
	chunks    map[entity.ChunkID]entity.Chunk
}

// New constructs an empty store.
func New() *Store {
	return &Store{
		libraries: make(map[entity.LibraryID]entity.Library),
		documents: make(map[entity.DocumentID]entity.Document),
		chunks:    make(map[entity.ChunkID]entity.Chunk),
	}
}

// ---------------------------------------------------------------------
// Libraries
// ---------------------------------------------------------------------

func (s *Store) CreateLibrary(lib entity.Library) (entity.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.libraries[lib.ID]; exists {
		return entity.Library{}, errx.New("library id already exists", errx.TypeConflict).
			WithDetail("library_id", lib.ID.String())
	}
	lib.DocumentIDs = append([]entity.DocumentID(nil), lib.DocumentIDs...)
	s.libraries[lib.ID] = lib
	logx.WithField("library_id", lib.ID.String()).Debug("library created")
	return lib.Clone(), nil
}

func (s *Store) GetLibrary(id entity.LibraryID) (entity.Library, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lib, ok := s.libraries[id]
	if !ok {
		return entity.Library{}, false
	}
	return lib.Clone(), true
}

func (s *Store) ListLibraries() []entity.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Library, 0, len(s.libraries))
	for _, lib := range s.libraries {
		out = append(out, lib.Clone())
	}
	return out
}

func (s *Store) UpdateLibrary(lib entity.Library) (entity.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.libraries[lib.ID]
	if !ok {
		return entity.Library{}, errx.NotFound("library not found").WithDetail("library_id", lib.ID.String())
	}
	lib.DocumentIDs = existing.DocumentIDs
	lib.CreatedAt = existing.CreatedAt
	s.libraries[lib.ID] = lib
	return lib.Clone(), nil
}

// DeleteLibrary cascades depth-first through its documents and their
// chunks.
func (s *Store) DeleteLibrary(id entity.LibraryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.libraries[id]; !ok {
		return errx.NotFound("library not found").WithDetail("library_id", id.String())
	}
	s.deleteLibraryLocked(id)
	return nil
}

func (s *Store) deleteLibraryLocked(id entity.LibraryID) {
	lib := s.libraries[id]
	for _, docID := range lib.DocumentIDs {
		s.deleteDocumentLocked(docID)
	}
	delete(s.libraries, id)
	logx.WithField("library_id", id.String()).Debug("library deleted (cascade)")
}

// ---------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------

func (s *Store) CreateDocument(doc entity.Document) (entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, ok := s.libraries[doc.LibraryID]
	if !ok {
		return entity.Document{}, errx.Validation("parent library does not exist").
			WithDetail("library_id", doc.LibraryID.String())
	}
	if _, exists := s.documents[doc.ID]; exists {
		return entity.Document{}, errx.New("document id already exists", errx.TypeConflict).
			WithDetail("document_id", doc.ID.String())
	}
	doc.ChunkIDs = append([]entity.ChunkID(nil), doc.ChunkIDs...)
	s.documents[doc.ID] = doc
	lib.DocumentIDs = append(lib.DocumentIDs, doc.ID)
	s.libraries[doc.LibraryID] = lib
	return doc.Clone(), nil
}

func (s *Store) GetDocument(id entity.DocumentID) (entity.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return entity.Document{}, false
	}
	return doc.Clone(), true
}

func (s *Store) ListDocumentsByLibrary(libID entity.LibraryID) ([]entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lib, ok := s.libraries[libID]
	if !ok {
		return nil, errx.NotFound("library not found").WithDetail("library_id", libID.String())
	}
	out := make([]entity.Document, 0, len(lib.DocumentIDs))
	for _, id := range lib.DocumentIDs {
		out = append(out, s.documents[id].Clone())
	}
	return out, nil
}

func (s *Store) UpdateDocument(doc entity.Document) (entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.documents[doc.ID]
	if !ok {
		return entity.Document{}, errx.NotFound("document not found").WithDetail("document_id", doc.ID.String())
	}
	doc.ChunkIDs = existing.ChunkIDs
	doc.LibraryID = existing.LibraryID
	doc.CreatedAt = existing.CreatedAt
	s.documents[doc.ID] = doc
	return doc.Clone(), nil
}

// DeleteDocument cascades through its chunks and detaches itself from
// its parent library's document list.
func (s *Store) DeleteDocument(id entity.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return errx.NotFound("document not found").WithDetail("document_id", id.String())
	}
	s.deleteDocumentLocked(id)
	if lib, ok := s.libraries[doc.LibraryID]; ok {
		lib.DocumentIDs = removeDocumentID(lib.DocumentIDs, id)
		s.libraries[doc.LibraryID] = lib
	}
	return nil
}

// deleteDocumentLocked deletes the document and its chunks but does NOT
// touch the parent library's document list (callers cascading from a
// library delete don't need to, since the whole library is discarded;
// DeleteDocument itself patches the list after calling this).
func (s *Store) deleteDocumentLocked(id entity.DocumentID) {
	doc := s.documents[id]
	for _, chunkID := range doc.ChunkIDs {
		delete(s.chunks, chunkID)
	}
	delete(s.documents, id)
}

// ---------------------------------------------------------------------
// Chunks
// ---------------------------------------------------------------------

func (s *Store) CreateChunk(chunk entity.Chunk) (entity.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[chunk.DocumentID]
	if !ok {
		return entity.Chunk{}, errx.Validation("parent document does not exist").
			WithDetail("document_id", chunk.DocumentID.String())
	}
	if _, exists := s.chunks[chunk.ID]; exists {
		return entity.Chunk{}, errx.New("chunk id already exists", errx.TypeConflict).
			WithDetail("chunk_id", chunk.ID.String())
	}
	chunk = chunk.Clone()
	s.chunks[chunk.ID] = chunk
	doc.ChunkIDs = append(doc.ChunkIDs, chunk.ID)
	s.documents[chunk.DocumentID] = doc
	return chunk.Clone(), nil
}

func (s *Store) GetChunk(id entity.ChunkID) (entity.Chunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return entity.Chunk{}, false
	}
	return chunk.Clone(), true
}

func (s *Store) ListChunksByDocument(docID entity.DocumentID) ([]entity.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, errx.NotFound("document not found").WithDetail("document_id", docID.String())
	}
	out := make([]entity.Chunk, 0, len(doc.ChunkIDs))
	for _, id := range doc.ChunkIDs {
		out = append(out, s.chunks[id].Clone())
	}
	return out, nil
}

// ListChunksByLibrary collects every chunk reachable from a library,
// walking library -> documents -> chunks. Used by the index registry to
// (re)build an index.
func (s *Store) ListChunksByLibrary(libID entity.LibraryID) ([]entity.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lib, ok := s.libraries[libID]
	if !ok {
		return nil, errx.NotFound("library not found").WithDetail("library_id", libID.String())
	}
	var out []entity.Chunk
	for _, docID := range lib.DocumentIDs {
		doc := s.documents[docID]
		for _, chunkID := range doc.ChunkIDs {
			out = append(out, s.chunks[chunkID].Clone())
		}
	}
	return out, nil
}

func (s *Store) UpdateChunk(chunk entity.Chunk) (entity.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.chunks[chunk.ID]
	if !ok {
		return entity.Chunk{}, errx.NotFound("chunk not found").WithDetail("chunk_id", chunk.ID.String())
	}
	chunk.DocumentID = existing.DocumentID
	chunk.CreatedAt = existing.CreatedAt
	chunk = chunk.Clone()
	s.chunks[chunk.ID] = chunk
	return chunk.Clone(), nil
}

func (s *Store) DeleteChunk(id entity.ChunkID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return errx.NotFound("chunk not found").WithDetail("chunk_id", id.String())
	}
	delete(s.chunks, id)
	if doc, ok := s.documents[chunk.DocumentID]; ok {
		doc.ChunkIDs = removeChunkID(doc.ChunkIDs, id)
		s.documents[chunk.DocumentID] = doc
	}
	return nil
}

// ---------------------------------------------------------------------
// Batch operations. All inputs are validated first; if any validation
// fails, no state changes.
// ---------------------------------------------------------------------

// BatchCreateDocuments validates every document's parent library and id
// uniqueness before creating any of them.
func (s *Store) BatchCreateDocuments(docs []entity.Document) ([]entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[entity.DocumentID]bool, len(docs))
	for _, doc := range docs {
		if _, ok := s.libraries[doc.LibraryID]; !ok {
			return nil, errx.Validation("parent library does not exist").
				WithDetail("library_id", doc.LibraryID.String())
		}
		if _, exists := s.documents[doc.ID]; exists || seen[doc.ID] {
			return nil, errx.New("document id already exists", errx.TypeConflict).
				WithDetail("document_id", doc.ID.String())
		}
		seen[doc.ID] = true
	}

	out := make([]entity.Document, 0, len(docs))
	for _, doc := range docs {
		doc.ChunkIDs = append([]entity.ChunkID(nil), doc.ChunkIDs...)
		s.documents[doc.ID] = doc
		lib := s.libraries[doc.LibraryID]
		lib.DocumentIDs = append(lib.DocumentIDs, doc.ID)
		s.libraries[doc.LibraryID] = lib
		out = append(out, doc.Clone())
	}
	return out, nil
}

// BatchCreateChunks validates every chunk's parent document and id
// uniqueness before creating any of them.
func (s *Store) BatchCreateChunks(chunks []entity.Chunk) ([]entity.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[entity.ChunkID]bool, len(chunks))
	for _, chunk := range chunks {
		if _, ok := s.documents[chunk.DocumentID]; !ok {
			return nil, errx.Validation("parent document does not exist").
				WithDetail("document_id", chunk.DocumentID.String())
		}
		if _, exists := s.chunks[chunk.ID]; exists || seen[chunk.ID] {
			return nil, errx.New("chunk id already exists", errx.TypeConflict).
				WithDetail("chunk_id", chunk.ID.String())
		}
		seen[chunk.ID] = true
	}

	out := make([]entity.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = chunk.Clone()
		s.chunks[chunk.ID] = chunk
		doc := s.documents[chunk.DocumentID]
		doc.ChunkIDs = append(doc.ChunkIDs, chunk.ID)
		s.documents[chunk.DocumentID] = doc
		out = append(out, chunk.Clone())
	}
	return out, nil
}

func removeDocumentID(ids []entity.DocumentID, target entity.DocumentID) []entity.DocumentID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func removeChunkID(ids []entity.ChunkID, target entity.ChunkID) []entity.ChunkID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
