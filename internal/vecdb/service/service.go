// Package service implements the entity services: a thin CRUD façade
// over the entity store that overrides caller-supplied parent
// identities and notifies the index registry of invalidating
// mutations.
package service

import (
	"time"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/registry"
	"github.com/Abraxas-365/vectordb/internal/vecdb/store"
	"github.com/Abraxas-365/vectordb/pkg/errx"
)

// Services bundles the three resource façades, sharing one store and
// one registry.
type Services struct {
	Libraries *LibraryService
	Documents *DocumentService
	Chunks    *ChunkService
}

// New wires the three façades against store and reg, falling back to
// entity.MetricCosine/IndexVariantFlat when defaults is the zero value.
func New(st *store.Store, reg *registry.Registry, defaults ...entity.IndexConfig) *Services {
	def := entity.IndexConfig{Metric: entity.MetricCosine}
	if len(defaults) > 0 {
		def = defaults[0]
		if def.Metric == "" {
			def.Metric = entity.MetricCosine
		}
	}
	return &Services{
		Libraries: &LibraryService{store: st, registry: reg, defaultIndex: def},
		Documents: &DocumentService{store: st, registry: reg},
		Chunks:    &ChunkService{store: st, registry: reg},
	}
}

// ---------------------------------------------------------------------
// Libraries
// ---------------------------------------------------------------------

type LibraryService struct {
	store        *store.Store
	registry     *registry.Registry
	defaultIndex entity.IndexConfig
}

type CreateLibraryInput struct {
	Name        string
	Metadata    entity.Metadata
	IndexType   entity.IndexVariant
	IndexConfig entity.IndexConfig
}

func (s *LibraryService) Create(in CreateLibraryInput) (entity.Library, error) {
	if in.Name == "" {
		return entity.Library{}, errx.Validation("library name must not be empty")
	}
	if in.IndexConfig.Metric == "" {
		in.IndexConfig.Metric = s.defaultIndex.Metric
	}
	if in.IndexConfig.NList == 0 {
		in.IndexConfig.NList = s.defaultIndex.NList
	}
	if in.IndexConfig.NProbe == 0 {
		in.IndexConfig.NProbe = s.defaultIndex.NProbe
	}
	if in.IndexType == "" {
		in.IndexType = entity.IndexVariantFlat
	}
	lib := entity.Library{
		ID:          entity.NewLibraryID(),
		Name:        in.Name,
		Metadata:    in.Metadata,
		IndexType:   in.IndexType,
		IndexConfig: in.IndexConfig,
		CreatedAt:   time.Now(),
	}
	return s.store.CreateLibrary(lib)
}

func (s *LibraryService) Get(id entity.LibraryID) (entity.Library, error) {
	lib, ok := s.store.GetLibrary(id)
	if !ok {
		return entity.Library{}, errx.NotFound("library not found").WithDetail("library_id", id.String())
	}
	return lib, nil
}

func (s *LibraryService) List() []entity.Library {
	return s.store.ListLibraries()
}

type UpdateLibraryInput struct {
	ID       entity.LibraryID
	Name     string
	Metadata entity.Metadata
}

// Update changes only name and metadata. Pure-metadata updates never
// affect vectors, so the registry is not notified.
func (s *LibraryService) Update(in UpdateLibraryInput) (entity.Library, error) {
	existing, err := s.Get(in.ID)
	if err != nil {
		return entity.Library{}, err
	}
	existing.Name = in.Name
	existing.Metadata = in.Metadata
	return s.store.UpdateLibrary(existing)
}

// Delete cascades through the store and drops the library's index.
func (s *LibraryService) Delete(id entity.LibraryID) error {
	if err := s.store.DeleteLibrary(id); err != nil {
		return err
	}
	s.registry.Forget(id)
	return nil
}

// ---------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------

type DocumentService struct {
	store    *store.Store
	registry *registry.Registry
}

type CreateDocumentInput struct {
	LibraryID entity.LibraryID
	Name      string
	Metadata  entity.Metadata
}

// Create uses in.LibraryID as the parent library; the HTTP handler fills
// it from the call path. Creating a document never adds
// vectors by itself (it starts with zero chunks), so this does not mark
// the library dirty.
func (s *DocumentService) Create(in CreateDocumentInput) (entity.Document, error) {
	if in.Name == "" {
		return entity.Document{}, errx.Validation("document name must not be empty")
	}
	doc := entity.Document{
		ID:        entity.NewDocumentID(),
		Name:      in.Name,
		Metadata:  in.Metadata,
		LibraryID: in.LibraryID,
		CreatedAt: time.Now(),
	}
	return s.store.CreateDocument(doc)
}

func (s *DocumentService) Get(id entity.DocumentID) (entity.Document, error) {
	doc, ok := s.store.GetDocument(id)
	if !ok {
		return entity.Document{}, errx.NotFound("document not found").WithDetail("document_id", id.String())
	}
	return doc, nil
}

func (s *DocumentService) ListByLibrary(libID entity.LibraryID) ([]entity.Document, error) {
	return s.store.ListDocumentsByLibrary(libID)
}

type UpdateDocumentInput struct {
	ID       entity.DocumentID
	Name     string
	Metadata entity.Metadata
}

// Update is a pure text/metadata change; it never marks the library
// dirty.
func (s *DocumentService) Update(in UpdateDocumentInput) (entity.Document, error) {
	existing, err := s.Get(in.ID)
	if err != nil {
		return entity.Document{}, err
	}
	existing.Name = in.Name
	existing.Metadata = in.Metadata
	return s.store.UpdateDocument(existing)
}

// Delete removes the document and its chunks (cascading). Removing
// vectors from the library invalidates its index, so the library is
// marked dirty.
func (s *DocumentService) Delete(id entity.DocumentID) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDocument(id); err != nil {
		return err
	}
	if len(doc.ChunkIDs) > 0 {
		s.registry.MarkDirty(doc.LibraryID)
	}
	return nil
}

// BatchCreate overrides every document's library id with libID before
// validating and creating them all-or-nothing.
func (s *DocumentService) BatchCreate(libID entity.LibraryID, inputs []CreateDocumentInput) ([]entity.Document, error) {
	docs := make([]entity.Document, len(inputs))
	for i, in := range inputs {
		docs[i] = entity.Document{
			ID:        entity.NewDocumentID(),
			Name:      in.Name,
			Metadata:  in.Metadata,
			LibraryID: libID,
			CreatedAt: time.Now(),
		}
	}
	return s.store.BatchCreateDocuments(docs)
}

// ---------------------------------------------------------------------
// Chunks
// ---------------------------------------------------------------------

type ChunkService struct {
	store    *store.Store
	registry *registry.Registry
}

type CreateChunkInput struct {
	DocumentID entity.DocumentID
	Text       string
	Embedding  []float32
	Metadata   entity.Metadata
}

// Create uses in.DocumentID as the parent document (the HTTP handler
// fills it from the call path) and marks the parent library dirty, since
// a new vector just became reachable from it.
func (s *ChunkService) Create(in CreateChunkInput) (entity.Chunk, error) {
	if len(in.Embedding) == 0 {
		return entity.Chunk{}, errx.Validation("chunk embedding must not be empty")
	}
	doc, err := s.lookupDocument(in.DocumentID)
	if err != nil {
		return entity.Chunk{}, err
	}
	chunk := entity.Chunk{
		ID:         entity.NewChunkID(),
		Text:       in.Text,
		Embedding:  in.Embedding,
		Metadata:   in.Metadata,
		DocumentID: in.DocumentID,
		CreatedAt:  time.Now(),
	}
	created, err := s.store.CreateChunk(chunk)
	if err != nil {
		return entity.Chunk{}, err
	}
	s.registry.MarkDirty(doc.LibraryID)
	return created, nil
}

func (s *ChunkService) Get(id entity.ChunkID) (entity.Chunk, error) {
	chunk, ok := s.store.GetChunk(id)
	if !ok {
		return entity.Chunk{}, errx.NotFound("chunk not found").WithDetail("chunk_id", id.String())
	}
	return chunk, nil
}

func (s *ChunkService) ListByDocument(docID entity.DocumentID) ([]entity.Chunk, error) {
	return s.store.ListChunksByDocument(docID)
}

type UpdateChunkInput struct {
	ID        entity.ChunkID
	Text      string
	Embedding []float32
	Metadata  entity.Metadata
}

// Update marks the library dirty only when the embedding is actually
// replaced; pure text/metadata updates do not.
func (s *ChunkService) Update(in UpdateChunkInput) (entity.Chunk, error) {
	existing, err := s.Get(in.ID)
	if err != nil {
		return entity.Chunk{}, err
	}
	embeddingChanged := in.Embedding != nil
	existing.Text = in.Text
	existing.Metadata = in.Metadata
	if embeddingChanged {
		existing.Embedding = in.Embedding
	}
	updated, err := s.store.UpdateChunk(existing)
	if err != nil {
		return entity.Chunk{}, err
	}
	if embeddingChanged {
		doc, err := s.lookupDocument(updated.DocumentID)
		if err == nil {
			s.registry.MarkDirty(doc.LibraryID)
		}
	}
	return updated, nil
}

// Delete removes the chunk and marks its library dirty; deleting a
// vector always invalidates the index.
func (s *ChunkService) Delete(id entity.ChunkID) error {
	chunk, err := s.Get(id)
	if err != nil {
		return err
	}
	doc, docErr := s.lookupDocument(chunk.DocumentID)
	if err := s.store.DeleteChunk(id); err != nil {
		return err
	}
	if docErr == nil {
		s.registry.MarkDirty(doc.LibraryID)
	}
	return nil
}

// BatchCreate overrides every chunk's document id with docID, validates
// and creates them all-or-nothing, then marks the parent library dirty
// once.
func (s *ChunkService) BatchCreate(docID entity.DocumentID, inputs []CreateChunkInput) ([]entity.Chunk, error) {
	doc, err := s.lookupDocument(docID)
	if err != nil {
		return nil, err
	}
	chunks := make([]entity.Chunk, len(inputs))
	for i, in := range inputs {
		if len(in.Embedding) == 0 {
			return nil, errx.Validation("chunk embedding must not be empty")
		}
		chunks[i] = entity.Chunk{
			ID:         entity.NewChunkID(),
			Text:       in.Text,
			Embedding:  in.Embedding,
			Metadata:   in.Metadata,
			DocumentID: docID,
			CreatedAt:  time.Now(),
		}
	}
	created, err := s.store.BatchCreateChunks(chunks)
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		s.registry.MarkDirty(doc.LibraryID)
	}
	return created, nil
}

func (s *ChunkService) lookupDocument(id entity.DocumentID) (entity.Document, error) {
	doc, ok := s.store.GetDocument(id)
	if !ok {
		return entity.Document{}, errx.Validation("parent document does not exist").
			WithDetail("document_id", id.String())
	}
	return doc, nil
}
