package index

import (
	"context"

	"github.com/cortesi/ra/pkg/types"
)

// Posting is one term occurrence in the inverted index: which chunk, which
// field, and at what position (for phrase matching). Repeated occurrences
// are separate postings.
type Posting struct {
	ChunkID  string
	Field    Field
	Term     string
	Position int
}

// ScoredChunk is a single term-field match surfaced by the store during
// candidate retrieval, before field/term boosts and the rest of the scoring
// pipeline are applied.
type ScoredChunk struct {
	Chunk     types.Chunk
	Field     Field
	Term      string
	TermFreq  int
	Positions []int
}

// Store is the inverted-index and manifest persistence contract. A concrete
// backend (SQLite is the one shipped here) implements chunk storage, term
// lookup and document-frequency accounting, and the incremental-indexing
// manifest.
type Store interface {
	// AddChunks upserts every chunk for one document, replacing any chunks
	// previously stored for that DocID. ContentHash and mtime are recorded
	// in the manifest under the same transaction.
	AddChunks(ctx context.Context, docID string, chunks []types.Chunk, mtime int64) error

	// RemoveDoc deletes every chunk belonging to docID and its manifest
	// entry.
	RemoveDoc(ctx context.Context, docID string) error

	// Lookup returns every posting for term in field, across all chunks.
	// Used by the query compiler's leaf evaluation.
	Lookup(ctx context.Context, field Field, term string) ([]Posting, error)

	// LookupExact returns chunks whose field equals value exactly, used for
	// tree: filters.
	LookupExact(ctx context.Context, field Field, value string) ([]types.Chunk, error)

	// Vocabulary returns every distinct term indexed in field, used as the
	// candidate pool for fuzzy term expansion.
	Vocabulary(ctx context.Context, field Field) ([]string, error)

	// DocFreq returns the number of distinct chunks containing term in
	// field, for IDF computation.
	DocFreq(ctx context.Context, field Field, term string) (int, error)

	// NumDocs returns the total number of indexed chunks.
	NumDocs(ctx context.Context) (int, error)

	// FieldLength returns the token count of field on chunkID, for BM25
	// length normalization.
	FieldLength(ctx context.Context, field Field, chunkID string) (int, error)

	// AvgFieldLength returns the mean token count of field across every
	// chunk that has at least one token in it.
	AvgFieldLength(ctx context.Context, field Field) (float64, error)

	// IndexBody stores and tokenizes a chunk's reconstructed body text.
	// Called once per chunk after AddChunks, since body text is derived
	// from the document tree rather than carried on types.Chunk itself.
	IndexBody(ctx context.Context, chunkID, body string) error

	// GetChunk fetches one chunk by id.
	GetChunk(ctx context.Context, id string) (*types.Chunk, error)

	// GetBody fetches the reconstructed body text for a chunk, for snippet
	// extraction.
	GetBody(ctx context.Context, id string) (string, error)

	// Manifest returns the recorded (mtime, content hash) for a doc, and
	// whether any entry exists.
	Manifest(ctx context.Context, docID string) (mtime int64, hash [32]byte, ok bool, err error)

	// ManifestDocIDs returns every doc id currently indexed under tree, used
	// by the indexer to detect files removed from disk between scans.
	ManifestDocIDs(ctx context.Context, tree string) ([]string, error)

	// ConfigHash returns the last-recorded config hash, and whether one has
	// ever been recorded.
	ConfigHash(ctx context.Context) (hash [32]byte, ok bool, err error)

	// SetConfigHash persists the current config hash, used to detect
	// stemmer-language or boost-table changes that require a full rebuild.
	SetConfigHash(ctx context.Context, hash [32]byte) error

	// Clear removes every chunk, posting and manifest entry.
	Clear(ctx context.Context) error

	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is an in-flight write transaction. It embeds Store so every write
// method can be called directly against the transaction; callers batch
// several documents' worth of AddChunks calls under one Tx and Commit once.
type Tx interface {
	Commit() error
	Rollback() error
	Store
}
