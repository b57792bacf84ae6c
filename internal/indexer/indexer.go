// Package indexer discovers documents under configured trees, classifies
// them against the stored manifest, and drives the index.Store pipeline
// that turns file content into searchable chunks.
package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cortesi/ra/internal/config"
	"github.com/cortesi/ra/internal/document"
	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/pkg/types"
)

// Config tunes one indexing run.
type Config struct {
	// Workers is the number of files processed concurrently. Defaults to
	// runtime.NumCPU().
	Workers int
	// BatchSize is the number of documents committed per transaction.
	// Defaults to 20.
	BatchSize int
	// InvalidateCache, if set, is called after every successful batch
	// commit and after removal processing, so a live search pipeline never
	// serves results against a index.Store it has stale cached pages for.
	InvalidateCache func()
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	return c
}

// Statistics summarizes one indexing run.
type Statistics struct {
	DocsAdded     int
	DocsModified  int
	DocsUnchanged int
	DocsRemoved   int
	DocsFailed    int
	ChunksIndexed int
	Duration      time.Duration
	Errors        []string
}

// Indexer drives discovery, classification and storage for one index.Store.
type Indexer struct {
	store  index.Store
	logger *log.Logger
}

// New returns an Indexer writing to store. A nil logger logs to stderr.
func New(store index.Store, logger *log.Logger) *Indexer {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Indexer{store: store, logger: logger}
}

// EnsureConfig compares currentHash against the store's recorded config
// hash. A mismatch clears the entire index before recording the new hash,
// since a changed stemmer language or boost table invalidates every
// previously stored posting. When no hash is recorded yet (a fresh index)
// nothing is cleared; the hash is simply recorded.
func (idx *Indexer) EnsureConfig(ctx context.Context, currentHash [32]byte) (rebuilt bool, err error) {
	needs, err := index.NeedsRebuild(ctx, idx.store, currentHash)
	if err != nil {
		return false, fmt.Errorf("indexer: check config hash: %w", err)
	}
	if needs {
		idx.logger.Printf("indexer: config changed, clearing index")
		if err := idx.store.Clear(ctx); err != nil {
			return false, fmt.Errorf("indexer: clear index: %w", err)
		}
		rebuilt = true
	}
	if err := idx.store.SetConfigHash(ctx, currentHash); err != nil {
		return rebuilt, fmt.Errorf("indexer: set config hash: %w", err)
	}
	return rebuilt, nil
}

// IndexTree discovers and indexes every matching file under tree, then
// removes manifest entries for files no longer present on disk.
func (idx *Indexer) IndexTree(ctx context.Context, tree config.Tree, cfg Config) (*Statistics, error) {
	cfg = cfg.withDefaults()
	start := time.Now()
	stats := &Statistics{}

	files, err := discoverTree(tree)
	if err != nil {
		return nil, fmt.Errorf("indexer: discover %s: %w", tree.Name, err)
	}

	if err := idx.indexFiles(ctx, tree, files, cfg, stats); err != nil {
		return nil, err
	}

	if err := idx.removeDeleted(ctx, tree, files, stats); err != nil {
		return nil, err
	}
	if stats.DocsRemoved > 0 && cfg.InvalidateCache != nil {
		cfg.InvalidateCache()
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (idx *Indexer) indexFiles(ctx context.Context, tree config.Tree, files []discovered, cfg Config, stats *Statistics) error {
	semaphore := make(chan struct{}, cfg.Workers)
	var added, modified, unchanged, failed, chunksIndexed int32
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < len(files); i += cfg.BatchSize {
		end := i + cfg.BatchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i:end]
		g.Go(func() error {
			return idx.indexBatch(gctx, tree, batch, semaphore, cfg, &added, &modified, &unchanged, &failed, &chunksIndexed, &mu, stats)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("indexer: index %s: %w", tree.Name, err)
	}

	stats.DocsAdded += int(added)
	stats.DocsModified += int(modified)
	stats.DocsUnchanged += int(unchanged)
	stats.DocsFailed += int(failed)
	stats.ChunksIndexed += int(chunksIndexed)
	return nil
}

func (idx *Indexer) indexBatch(ctx context.Context, tree config.Tree, batch []discovered, semaphore chan struct{},
	cfg Config, added, modified, unchanged, failed, chunksIndexed *int32, mu *sync.Mutex, stats *Statistics) error {

	tx, err := idx.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range batch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case semaphore <- struct{}{}:
		}

		changed, err := idx.indexFile(ctx, tx, tree, d)
		<-semaphore

		if err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", d.RelPath, err))
			mu.Unlock()
			idx.logger.Printf("indexer: %s: %v", d.AbsPath, err)
			continue
		}
		switch changed {
		case index.Added:
			atomic.AddInt32(added, 1)
		case index.Modified:
			atomic.AddInt32(modified, 1)
		case index.Unchanged:
			atomic.AddInt32(unchanged, 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	if cfg.InvalidateCache != nil {
		cfg.InvalidateCache()
	}
	return nil
}

// indexFile classifies one file against the manifest and, if it is new or
// changed, rebuilds its chunk tree and stores it. Unchanged files are
// skipped without touching the store.
func (idx *Indexer) indexFile(ctx context.Context, tx index.Tx, tree config.Tree, d discovered) (index.ChangeKind, error) {
	docID := document.MakeDocID(tree.Name, d.RelPath)

	var content []byte
	var hashed bool
	var contentHash [32]byte
	hashFn := func() [32]byte {
		if !hashed {
			b, err := os.ReadFile(d.AbsPath)
			if err == nil {
				content = b
				contentHash = types.ComputeContentHash(b)
			}
			hashed = true
		}
		return contentHash
	}

	kind, err := index.Classify(ctx, tx, docID, d.Mtime, hashFn)
	if err != nil {
		return index.Unchanged, fmt.Errorf("classify: %w", err)
	}
	if kind == index.Unchanged {
		return index.Unchanged, nil
	}

	if content == nil {
		content, err = os.ReadFile(d.AbsPath)
		if err != nil {
			return kind, err
		}
	}

	builder := document.NewBuilder(tree.Name)
	docTree, chunks, err := builder.Build(d.RelPath, content)
	if err != nil {
		return kind, fmt.Errorf("build tree: %w", err)
	}
	if docTree == nil {
		// Empty document: drop any previously indexed chunks for it.
		return kind, tx.RemoveDoc(ctx, docID)
	}

	if err := tx.AddChunks(ctx, docID, chunks, d.Mtime); err != nil {
		return kind, fmt.Errorf("add chunks: %w", err)
	}
	for _, c := range chunks {
		node := docTree.GetNode(c.ID)
		if node == nil {
			continue
		}
		if err := tx.IndexBody(ctx, c.ID, docTree.Body(node)); err != nil {
			return kind, fmt.Errorf("index body %s: %w", c.ID, err)
		}
	}
	return kind, nil
}

// removeDeleted drops manifest entries for files the manifest still has
// under tree but that discovery no longer found on disk.
func (idx *Indexer) removeDeleted(ctx context.Context, tree config.Tree, found []discovered, stats *Statistics) error {
	existing, err := idx.store.ManifestDocIDs(ctx, tree.Name)
	if err != nil {
		return fmt.Errorf("indexer: list manifest for %s: %w", tree.Name, err)
	}
	present := make(map[string]bool, len(found))
	for _, d := range found {
		present[document.MakeDocID(tree.Name, d.RelPath)] = true
	}
	for _, docID := range existing {
		if present[docID] {
			continue
		}
		if err := idx.store.RemoveDoc(ctx, docID); err != nil {
			return fmt.Errorf("indexer: remove %s: %w", docID, err)
		}
		stats.DocsRemoved++
	}
	return nil
}
