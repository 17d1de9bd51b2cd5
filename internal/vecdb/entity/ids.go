// Package entity holds the domain types shared by the store, the index
// layer, the filter evaluator, and the search coordinator: libraries,
// documents, chunks, and the identities that tie them together.
package entity

import "github.com/google/uuid"

// LibraryID is an opaque 128-bit identity rendered as canonical text at
// the process boundary.
type LibraryID uuid.UUID

// NewLibraryID mints a fresh random identity.
func NewLibraryID() LibraryID { return LibraryID(uuid.New()) }

// ParseLibraryID parses the canonical textual form produced by String.
func ParseLibraryID(s string) (LibraryID, error) {
	id, err := uuid.Parse(s)
	return LibraryID(id), err
}

func (id LibraryID) String() string { return uuid.UUID(id).String() }
func (id LibraryID) IsNil() bool    { return id == LibraryID{} }

// DocumentID is an opaque 128-bit identity rendered as canonical text at
// the process boundary.
type DocumentID uuid.UUID

func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

func ParseDocumentID(s string) (DocumentID, error) {
	id, err := uuid.Parse(s)
	return DocumentID(id), err
}

func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) IsNil() bool    { return id == DocumentID{} }

// ChunkID is an opaque 128-bit identity rendered as canonical text at the
// process boundary.
type ChunkID uuid.UUID

func NewChunkID() ChunkID { return ChunkID(uuid.New()) }

func ParseChunkID(s string) (ChunkID, error) {
	id, err := uuid.Parse(s)
	return ChunkID(id), err
}

func (id ChunkID) String() string { return uuid.UUID(id).String() }
func (id ChunkID) IsNil() bool    { return id == ChunkID{} }
