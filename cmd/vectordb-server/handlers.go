package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/service"
	"github.com/Abraxas-365/vectordb/pkg/errx"
)

type libraryHandlers struct {
	c *Container
}

func (h *libraryHandlers) create(c *fiber.Ctx) error {
	var req createLibraryRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	lib, err := h.c.Services.Libraries.Create(service.CreateLibraryInput{
		Name:        req.Name,
		Metadata:    req.Metadata,
		IndexType:   entity.IndexVariant(req.IndexType),
		IndexConfig: req.IndexConfig.toEntity(),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newLibraryResponse(lib))
}

func (h *libraryHandlers) get(c *fiber.Ctx) error {
	id, err := entity.ParseLibraryID(c.Params("libraryID"))
	if err != nil {
		return errx.Validation("invalid library id")
	}
	lib, err := h.c.Services.Libraries.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(newLibraryResponse(lib))
}

func (h *libraryHandlers) list(c *fiber.Ctx) error {
	libs := h.c.Services.Libraries.List()
	out := make([]libraryResponse, len(libs))
	for i, lib := range libs {
		out[i] = newLibraryResponse(lib)
	}
	return c.JSON(out)
}

func (h *libraryHandlers) update(c *fiber.Ctx) error {
	id, err := entity.ParseLibraryID(c.Params("libraryID"))
	if err != nil {
		return errx.Validation("invalid library id")
	}
	var req createLibraryRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	lib, err := h.c.Services.Libraries.Update(service.UpdateLibraryInput{
		ID:       id,
		Name:     req.Name,
		Metadata: req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.JSON(newLibraryResponse(lib))
}

func (h *libraryHandlers) delete(c *fiber.Ctx) error {
	id, err := entity.ParseLibraryID(c.Params("libraryID"))
	if err != nil {
		return errx.Validation("invalid library id")
	}
	if err := h.c.Services.Libraries.Delete(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type documentHandlers struct {
	c *Container
}

func (h *documentHandlers) create(c *fiber.Ctx) error {
	libID, err := entity.ParseLibraryID(c.Params("libraryID"))
	if err != nil {
		return errx.Validation("invalid library id")
	}
	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	doc, err := h.c.Services.Documents.Create(service.CreateDocumentInput{
		LibraryID: libID,
		Name:      req.Name,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newDocumentResponse(doc))
}

func (h *documentHandlers) get(c *fiber.Ctx) error {
	id, err := entity.ParseDocumentID(c.Params("documentID"))
	if err != nil {
		return errx.Validation("invalid document id")
	}
	doc, err := h.c.Services.Documents.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(newDocumentResponse(doc))
}

func (h *documentHandlers) list(c *fiber.Ctx) error {
	libID, err := entity.ParseLibraryID(c.Params("libraryID"))
	if err != nil {
		return errx.Validation("invalid library id")
	}
	docs, err := h.c.Services.Documents.ListByLibrary(libID)
	if err != nil {
		return err
	}
	out := make([]documentResponse, len(docs))
	for i, doc := range docs {
		out[i] = newDocumentResponse(doc)
	}
	return c.JSON(out)
}

func (h *documentHandlers) update(c *fiber.Ctx) error {
	id, err := entity.ParseDocumentID(c.Params("documentID"))
	if err != nil {
		return errx.Validation("invalid document id")
	}
	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	doc, err := h.c.Services.Documents.Update(service.UpdateDocumentInput{
		ID:       id,
		Name:     req.Name,
		Metadata: req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.JSON(newDocumentResponse(doc))
}

func (h *documentHandlers) delete(c *fiber.Ctx) error {
	id, err := entity.ParseDocumentID(c.Params("documentID"))
	if err != nil {
		return errx.Validation("invalid document id")
	}
	if err := h.c.Services.Documents.Delete(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *documentHandlers) batchCreate(c *fiber.Ctx) error {
	libID, err := entity.ParseLibraryID(c.Params("libraryID"))
	if err != nil {
		return errx.Validation("invalid library id")
	}
	var reqs []createDocumentRequest
	if err := c.BodyParser(&reqs); err != nil {
		return errx.Validation("invalid request body")
	}
	inputs := make([]service.CreateDocumentInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = service.CreateDocumentInput{Name: r.Name, Metadata: r.Metadata}
	}
	docs, err := h.c.Services.Documents.BatchCreate(libID, inputs)
	if err != nil {
		return err
	}
	out := make([]documentResponse, len(docs))
	for i, doc := range docs {
		out[i] = newDocumentResponse(doc)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

type chunkHandlers struct {
	c *Container
}

func (h *chunkHandlers) create(c *fiber.Ctx) error {
	docID, err := entity.ParseDocumentID(c.Params("documentID"))
	if err != nil {
		return errx.Validation("invalid document id")
	}
	var req createChunkRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	chunk, err := h.c.Services.Chunks.Create(service.CreateChunkInput{
		DocumentID: docID,
		Text:       req.Text,
		Embedding:  req.Embedding,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newChunkResponse(chunk))
}

func (h *chunkHandlers) get(c *fiber.Ctx) error {
	id, err := entity.ParseChunkID(c.Params("chunkID"))
	if err != nil {
		return errx.Validation("invalid chunk id")
	}
	chunk, err := h.c.Services.Chunks.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(newChunkResponse(chunk))
}

func (h *chunkHandlers) list(c *fiber.Ctx) error {
	docID, err := entity.ParseDocumentID(c.Params("documentID"))
	if err != nil {
		return errx.Validation("invalid document id")
	}
	chunks, err := h.c.Services.Chunks.ListByDocument(docID)
	if err != nil {
		return err
	}
	out := make([]chunkResponse, len(chunks))
	for i, chunk := range chunks {
		out[i] = newChunkResponse(chunk)
	}
	return c.JSON(out)
}

func (h *chunkHandlers) update(c *fiber.Ctx) error {
	id, err := entity.ParseChunkID(c.Params("chunkID"))
	if err != nil {
		return errx.Validation("invalid chunk id")
	}
	var req createChunkRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	chunk, err := h.c.Services.Chunks.Update(service.UpdateChunkInput{
		ID:        id,
		Text:      req.Text,
		Embedding: req.Embedding,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.JSON(newChunkResponse(chunk))
}

func (h *chunkHandlers) delete(c *fiber.Ctx) error {
	id, err := entity.ParseChunkID(c.Params("chunkID"))
	if err != nil {
		return errx.Validation("invalid chunk id")
	}
	if err := h.c.Services.Chunks.Delete(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *chunkHandlers) batchCreate(c *fiber.Ctx) error {
	docID, err := entity.ParseDocumentID(c.Params("documentID"))
	if err != nil {
		return errx.Validation("invalid document id")
	}
	var reqs []createChunkRequest
	if err := c.BodyParser(&reqs); err != nil {
		return errx.Validation("invalid request body")
	}
	inputs := make([]service.CreateChunkInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = service.CreateChunkInput{Text: r.Text, Embedding: r.Embedding, Metadata: r.Metadata}
	}
	chunks, err := h.c.Services.Chunks.BatchCreate(docID, inputs)
	if err != nil {
		return err
	}
	out := make([]chunkResponse, len(chunks))
	for i, chunk := range chunks {
		out[i] = newChunkResponse(chunk)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

type searchHandlers struct {
	c *Container
}

func (h *searchHandlers) search(c *fiber.Ctx) error {
	libID, err := entity.ParseLibraryID(c.Params("libraryID"))
	if err != nil {
		return errx.Validation("invalid library id")
	}
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}

	metadataGroup, err := toFilterGroup(req.Metadata)
	if err != nil {
		return err
	}
	docIDs, err := toDocumentIDs(req.DocumentIDs)
	if err != nil {
		return err
	}

	var bundle *entity.SearchFilters
	if metadataGroup != nil || req.CreatedAfter != nil || req.CreatedBefore != nil || len(docIDs) > 0 {
		bundle = &entity.SearchFilters{
			Metadata:      metadataGroup,
			CreatedAfter:  req.CreatedAfter,
			CreatedBefore: req.CreatedBefore,
			DocumentIDs:   docIDs,
		}
	}

	resp, err := h.c.Search.Search(libID, req.Query, req.K, bundle)
	if err != nil {
		return err
	}

	results := make([]searchResultDTO, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = searchResultDTO{
			ChunkID:    r.ChunkID.String(),
			DocumentID: r.DocumentID.String(),
			Text:       r.Text,
			Score:      r.Score,
			Metadata:   r.Metadata,
		}
	}
	return c.JSON(searchResponse{
		Results:       results,
		Total:         resp.Total,
		ElapsedMillis: resp.ElapsedMillis,
	})
}
