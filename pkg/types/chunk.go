package types

import (
	"crypto/sha256"
	"errors"
)

// NodeKind distinguishes the document root from a heading node.
type NodeKind string

const (
	KindDocument NodeKind = "document"
	KindHeading  NodeKind = "heading"
)

// Chunk is the flattened, index-facing record for one node of a document's
// chunk tree. Bodies are never stored on a Chunk; they are reconstructed from
// ByteStart/ByteEnd (minus child spans) against the source document when
// needed.
type Chunk struct {
	// ID is globally unique: "{tree}:{path}" for the document node,
	// "{tree}:{path}#{slug}" for heading nodes.
	ID string
	// DocID is "{tree}:{path}", shared by every node in the document.
	DocID string
	// ParentID is the containing node's ID, empty for the document node.
	ParentID string

	Tree string
	Path string

	Kind  NodeKind
	Depth int
	// Position is the pre-order index within the document, starting at 0.
	Position int

	Title string
	// Slug is empty for the document node.
	Slug string

	ByteStart int
	ByteEnd   int

	// SiblingCount is the number of siblings sharing this node's parent,
	// including itself. 1 for the document node.
	SiblingCount int

	// Breadcrumb is display-only: never indexed.
	Breadcrumb string

	// Tags is populated only on the document node, from frontmatter.
	Tags []string

	// ContentHash is the sha256 of this document's full source content,
	// shared by every chunk belonging to the document. Used by the manifest
	// as the secondary incremental-update signal.
	ContentHash [32]byte
}

// Validate checks the structural invariants a Chunk must satisfy before it
// can be added to the index.
func (c *Chunk) Validate() error {
	if c.ID == "" || c.DocID == "" {
		return errors.New("chunk id and doc id are required")
	}
	if c.Tree == "" || c.Path == "" {
		return errors.New("chunk tree and path are required")
	}
	if c.Kind == KindDocument && c.ParentID != "" {
		return errors.New("document node must not have a parent")
	}
	if c.Kind == KindHeading && c.ParentID == "" {
		return errors.New("heading node must have a parent")
	}
	if c.Kind == KindHeading && c.Slug == "" {
		return errors.New("heading node must have a slug")
	}
	if c.ByteStart < 0 || c.ByteEnd <= c.ByteStart {
		return errors.New("byte range must satisfy 0 <= start < end")
	}
	if c.Depth < 0 || c.Depth > 6 {
		return errors.New("depth must be between 0 and 6")
	}
	if c.SiblingCount < 1 {
		return errors.New("sibling count must be at least 1")
	}
	return nil
}

// ComputeContentHash hashes the full source content of the chunk's document.
// All chunks of one document share the same hash.
func ComputeContentHash(content []byte) [32]byte {
	return sha256.Sum256(content)
}

// IsDocument reports whether this chunk is a document root node.
func (c *Chunk) IsDocument() bool {
	return c.Kind == KindDocument
}
