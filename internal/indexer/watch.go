package indexer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cortesi/ra/internal/config"
)

// DefaultDebounce is how long the watcher waits after the last filesystem
// event in a tree before triggering a reindex, coalescing editor saves and
// bulk git operations into one pass.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reindexes configured trees as their files change on disk.
type Watcher struct {
	idx      *Indexer
	trees    []config.Tree
	cfg      Config
	debounce time.Duration
	logger   *log.Logger

	fsw    *fsnotify.Watcher
	stopCh chan struct{}

	mu        sync.Mutex
	timers    map[string]*time.Timer
	lastEvent map[string]time.Time
}

// NewWatcher builds a Watcher over trees, using idx to reindex a tree when
// its files change. cfg is reused as the per-tree IndexTree configuration
// for every triggered reindex.
func NewWatcher(idx *Indexer, trees []config.Tree, cfg Config, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Watcher{
		idx:       idx,
		trees:     trees,
		cfg:       cfg,
		debounce:  DefaultDebounce,
		logger:    logger,
		fsw:       fsw,
		stopCh:    make(chan struct{}),
		timers:    make(map[string]*time.Timer),
		lastEvent: make(map[string]time.Time),
	}, nil
}

// SetDebounce overrides the default settle time between the last event in
// a tree and the reindex it triggers.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start adds every tree's directory subtree to the underlying fsnotify
// watch set and begins the event loop. fsnotify does not watch recursively,
// so every directory is registered individually, mirroring discoverTree's
// walk.
func (w *Watcher) Start() error {
	for _, tree := range w.trees {
		if err := w.addTree(tree); err != nil {
			return err
		}
	}
	go w.loop()
	return nil
}

func (w *Watcher) addTree(tree config.Tree) error {
	return filepath.WalkDir(tree.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != tree.Root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Stop halts the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			w.mu.Lock()
			for _, t := range w.timers {
				t.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			tree := w.treeFor(event.Name)
			if tree == nil {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
				}
			}
			w.scheduleReindex(*tree)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("indexer: watch error: %v", err)
		}
	}
}

func (w *Watcher) treeFor(path string) *config.Tree {
	for i, tree := range w.trees {
		if rel, err := filepath.Rel(tree.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return &w.trees[i]
		}
	}
	return nil
}

func (w *Watcher) scheduleReindex(tree config.Tree) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastEvent[tree.Name] = time.Now()
	if t, ok := w.timers[tree.Name]; ok {
		t.Stop()
	}
	w.timers[tree.Name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		elapsed := time.Since(w.lastEvent[tree.Name])
		w.mu.Unlock()
		if elapsed < w.debounce {
			return
		}
		w.reindex(tree)
	})
}

func (w *Watcher) reindex(tree config.Tree) {
	stats, err := w.idx.IndexTree(context.Background(), tree, w.cfg)
	if err != nil {
		w.logger.Printf("indexer: watch reindex %s: %v", tree.Name, err)
		return
	}
	w.logger.Printf("indexer: watch reindex %s: +%d ~%d -%d", tree.Name,
		stats.DocsAdded, stats.DocsModified, stats.DocsRemoved)
}
