// Package search implements the search coordinator, which turns
// (library, query, k, predicate bundle) into an ordered, filtered,
// timed result set.
package search

import (
	"time"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/filter"
	"github.com/Abraxas-365/vectordb/internal/vecdb/registry"
	"github.com/Abraxas-365/vectordb/pkg/errx"
	"github.com/Abraxas-365/vectordb/pkg/logx"
)

const (
	MinK = 1
	MaxK = 1000

	// overFetchFactor is applied to k when a custom predicate is
	// present, to compensate for the pruning that happens outside the
	// index.
	overFetchFactor = 3
)

// Result is one hydrated, scored hit.
type Result struct {
	ChunkID    entity.ChunkID
	DocumentID entity.DocumentID
	Text       string
	Score      float32
	Metadata   entity.Metadata
}

// Response is the full search return shape.
type Response struct {
	Results       []Result
	Total         int
	ElapsedMillis float64
}

// ChunkStore is the subset of the entity store the coordinator needs to
// hydrate index hits.
type ChunkStore interface {
	GetChunk(id entity.ChunkID) (entity.Chunk, bool)
}

// Coordinator wires the registry, the store, and the filter evaluator
// together.
type Coordinator struct {
	registry *registry.Registry
	store    ChunkStore
}

// New constructs a coordinator.
func New(reg *registry.Registry, store ChunkStore) *Coordinator {
	return &Coordinator{registry: reg, store: store}
}

// Search ranks the library's vectors against query, hydrates the hits,
// applies the bundle's filters, and truncates to k.
func (c *Coordinator) Search(libID entity.LibraryID, query []float32, k int, bundle *entity.SearchFilters) (Response, error) {
	start := time.Now()

	if k < MinK || k > MaxK {
		return Response{}, errx.Validation("k must be in [1, 1000]").WithDetail("k", k)
	}

	// Step 1: obtain the library's index (may trigger build).
	idx, err := c.registry.GetIndex(libID)
	if err != nil {
		return Response{}, err
	}

	// Step 2: validate query dimension.
	if len(query) != idx.Dimension() {
		return Response{}, errx.DimensionMismatch("query vector dimension does not match library dimension").
			WithDetail("got", len(query)).
			WithDetail("want", idx.Dimension())
	}

	// Step 3: decide fetch size.
	m := k
	if bundle.HasCustom() {
		m = k * overFetchFactor
	}

	// Step 4: top-m from the index.
	hits, err := idx.Search(query, m)
	if err != nil {
		return Response{}, err
	}

	// Step 5: hydrate.
	type candidate struct {
		chunk entity.Chunk
		score float32
	}
	candidates := make([]candidate, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := c.store.GetChunk(hit.ID)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{chunk: chunk, score: hit.Score})
	}

	toResult := func(cand candidate) Result {
		return Result{
			ChunkID:    cand.chunk.ID,
			DocumentID: cand.chunk.DocumentID,
			Text:       cand.chunk.Text,
			Score:      cand.score,
			Metadata:   cand.chunk.Metadata,
		}
	}

	var filtered []Result
	switch {
	case bundle.HasCustom():
		// Step 7: a custom predicate is the sole filter; stop once
		// k survivors are collected.
		for _, cand := range candidates {
			if filter.MatchesCustom(bundle, cand.chunk) {
				filtered = append(filtered, toResult(cand))
				if len(filtered) >= k {
					break
				}
			}
		}
	case bundle.HasDeclarative():
		// Step 6: declarative filtering.
		for _, cand := range candidates {
			if filter.Matches(bundle, cand.chunk) {
				filtered = append(filtered, toResult(cand))
			}
		}
	default:
		for _, cand := range candidates {
			filtered = append(filtered, toResult(cand))
		}
	}

	// Step 8: truncate and time.
	if len(filtered) > k {
		filtered = filtered[:k]
	}

	elapsed := time.Since(start)
	logx.WithFields(logx.Fields{
		"library_id": libID.String(),
		"k":          k,
		"results":    len(filtered),
	}).Debugf("search completed in %v", elapsed)

	return Response{
		Results:       filtered,
		Total:         len(filtered),
		ElapsedMillis: float64(elapsed.Microseconds()) / 1000.0,
	}, nil
}
