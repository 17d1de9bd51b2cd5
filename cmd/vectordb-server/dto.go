package main

import (
	"time"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/pkg/ptrx"
)

// These wire types expose the external interface over JSON. The
// predicate bundle's wire form has no field for a custom filter
// function; a function reference cannot cross the transport boundary.

// NList and NProbe are pointers so an unset value is omitted from the
// response JSON. On the way in, toEntity maps an absent key and an
// explicit 0 to the same 0, and the service and registry treat 0 (or any
// non-positive value) as unset and derive the default; an explicit 0 is
// not rejected.
type indexConfigDTO struct {
	Metric string `json:"metric,omitempty"`
	NList  *int   `json:"nlist,omitempty"`
	NProbe *int   `json:"nprobe,omitempty"`
}

func (d indexConfigDTO) toEntity() entity.IndexConfig {
	metric := entity.Metric(d.Metric)
	if metric == "" {
		metric = entity.MetricCosine
	}
	cfg := entity.IndexConfig{Metric: metric}
	if d.NList != nil {
		cfg.NList = *d.NList
	}
	if d.NProbe != nil {
		cfg.NProbe = *d.NProbe
	}
	return cfg
}

func indexConfigDTOFromEntity(cfg entity.IndexConfig) indexConfigDTO {
	dto := indexConfigDTO{Metric: string(cfg.Metric)}
	if cfg.NList != 0 {
		dto.NList = ptrx.Int(cfg.NList)
	}
	if cfg.NProbe != 0 {
		dto.NProbe = ptrx.Int(cfg.NProbe)
	}
	return dto
}

type createLibraryRequest struct {
	Name        string          `json:"name"`
	Metadata    entity.Metadata `json:"metadata"`
	IndexType   string          `json:"index_type"`
	IndexConfig indexConfigDTO  `json:"index_config"`
}

type libraryResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Metadata    entity.Metadata `json:"metadata"`
	IndexType   string          `json:"index_type"`
	IndexConfig indexConfigDTO  `json:"index_config"`
	DocumentIDs []string        `json:"document_ids"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newLibraryResponse(lib entity.Library) libraryResponse {
	docIDs := make([]string, len(lib.DocumentIDs))
	for i, id := range lib.DocumentIDs {
		docIDs[i] = id.String()
	}
	return libraryResponse{
		ID:          lib.ID.String(),
		Name:        lib.Name,
		Metadata:    lib.Metadata,
		IndexType:   string(lib.IndexType),
		IndexConfig: indexConfigDTOFromEntity(lib.IndexConfig),
		DocumentIDs: docIDs,
		CreatedAt:   lib.CreatedAt,
	}
}

type createDocumentRequest struct {
	Name     string          `json:"name"`
	Metadata entity.Metadata `json:"metadata"`
}

type documentResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Metadata  entity.Metadata `json:"metadata"`
	LibraryID string          `json:"library_id"`
	ChunkIDs  []string        `json:"chunk_ids"`
	CreatedAt time.Time       `json:"created_at"`
}

func newDocumentResponse(doc entity.Document) documentResponse {
	chunkIDs := make([]string, len(doc.ChunkIDs))
	for i, id := range doc.ChunkIDs {
		chunkIDs[i] = id.String()
	}
	return documentResponse{
		ID:        doc.ID.String(),
		Name:      doc.Name,
		Metadata:  doc.Metadata,
		LibraryID: doc.LibraryID.String(),
		ChunkIDs:  chunkIDs,
		CreatedAt: doc.CreatedAt,
	}
}

type createChunkRequest struct {
	Text      string          `json:"text"`
	Embedding []float32       `json:"embedding"`
	Metadata  entity.Metadata `json:"metadata"`
}

type chunkResponse struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Embedding  []float32       `json:"embedding"`
	Metadata   entity.Metadata `json:"metadata"`
	DocumentID string          `json:"document_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newChunkResponse(chunk entity.Chunk) chunkResponse {
	return chunkResponse{
		ID:         chunk.ID.String(),
		Text:       chunk.Text,
		Embedding:  chunk.Embedding,
		Metadata:   chunk.Metadata,
		DocumentID: chunk.DocumentID.String(),
		CreatedAt:  chunk.CreatedAt,
	}
}

type metadataFilterDTO struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

type filterGroupDTO struct {
	Operator string              `json:"operator"`
	Filters  []filterGroupDTO    `json:"groups,omitempty"`
	Leaves   []metadataFilterDTO `json:"filters,omitempty"`
}

type searchRequest struct {
	Query         []float32       `json:"query"`
	K             int             `json:"k"`
	Metadata      *filterGroupDTO `json:"metadata,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
	DocumentIDs   []string        `json:"document_ids,omitempty"`
}

type searchResultDTO struct {
	ChunkID    string          `json:"chunk_id"`
	DocumentID string          `json:"document_id"`
	Text       string          `json:"text"`
	Score      float32         `json:"score"`
	Metadata   entity.Metadata `json:"metadata"`
}

type searchResponse struct {
	Results       []searchResultDTO `json:"results"`
	Total         int               `json:"total"`
	ElapsedMillis float64           `json:"elapsed_ms"`
}
