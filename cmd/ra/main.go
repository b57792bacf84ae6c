// Command ra is a minimal flag-based harness over the index, indexer and
// search packages: enough to drive an index build, a watch loop, or a
// one-shot query from a shell, not a designed CLI UX.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cortesi/ra/internal/analyzer"
	"github.com/cortesi/ra/internal/config"
	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/internal/indexer"
	"github.com/cortesi/ra/internal/logging"
	"github.com/cortesi/ra/internal/search"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "index":
		err = runIndex(args)
	case "watch":
		err = runWatch(args)
	case "search":
		err = runSearch(args)
	case "context":
		err = runContext(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "ra:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ra <index|watch|search|context> [flags]")
}

func commonFlags(fs *flag.FlagSet) (configPath, dbPath *string, logPath *string) {
	configPath = fs.String("config", ".ra.toml", "path to config file")
	dbPath = fs.String("db", "ra.db", "path to sqlite database")
	logPath = fs.String("log", "", "path to log file (default stderr)")
	return
}

func openStore(cfg *config.Config, dbPath string) (index.Store, *analyzer.Analyzer, error) {
	lang := cfg.Index.StemmerLanguage
	if lang == "" {
		lang = "english"
	}
	a, err := analyzer.New(lang)
	if err != nil {
		return nil, nil, fmt.Errorf("build analyzer: %w", err)
	}
	store, err := index.Open(dbPath, a)
	if err != nil {
		return nil, nil, err
	}
	return store, a, nil
}

func ensureConfigHash(ctx context.Context, idx *indexer.Indexer, cfg *config.Config) error {
	serialized, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = idx.EnsureConfig(ctx, index.HashConfig(serialized))
	return err
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath, dbPath, logPath := commonFlags(fs)
	workers := fs.Int("workers", 0, "concurrent workers (default NumCPU)")
	batchSize := fs.Int("batch", 0, "documents per commit batch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, _, err := openStore(cfg, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	logger := logging.New(logging.Config{FilePath: *logPath})
	idx := indexer.New(store, logger)
	ctx := context.Background()

	if err := ensureConfigHash(ctx, idx, cfg); err != nil {
		return err
	}

	icfg := indexer.Config{Workers: *workers, BatchSize: *batchSize}
	for _, tree := range cfg.Tree {
		stats, err := idx.IndexTree(ctx, tree, icfg)
		if err != nil {
			return fmt.Errorf("index %s: %w", tree.Name, err)
		}
		fmt.Printf("%s: +%d added, ~%d modified, =%d unchanged, -%d removed, %d failed\n",
			tree.Name, stats.DocsAdded, stats.DocsModified, stats.DocsUnchanged, stats.DocsRemoved, stats.DocsFailed)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath, dbPath, logPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, _, err := openStore(cfg, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	logger := logging.New(logging.Config{FilePath: *logPath})
	idx := indexer.New(store, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ensureConfigHash(ctx, idx, cfg); err != nil {
		return err
	}
	for _, tree := range cfg.Tree {
		if _, err := idx.IndexTree(ctx, tree, indexer.Config{}); err != nil {
			return fmt.Errorf("initial index %s: %w", tree.Name, err)
		}
	}

	w, err := indexer.NewWatcher(idx, cfg.Tree, indexer.Config{}, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	logger.Printf("ra: watching %d tree(s)", len(cfg.Tree))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return w.Stop()
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath, dbPath, _ := commonFlags(fs)
	tree := fs.String("tree", "", "restrict to a single tree")
	limit := fs.Int("limit", 0, "maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("search: query string required")
	}
	queryString := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, a, err := openStore(cfg, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	searcher := search.NewSearcher(store, cfg, a)
	params := search.Params{Limit: *limit}
	if *tree != "" {
		params.Trees = []string{*tree}
	}
	results, err := searcher.Search(context.Background(), queryString, params)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func runContext(args []string) error {
	fs := flag.NewFlagSet("context", flag.ExitOnError)
	configPath, dbPath, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("context: file path required")
	}
	path := fs.Arg(0)

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, a, err := openStore(cfg, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	searcher := search.NewSearcher(store, cfg, a)
	params := search.ContextParams{
		SampleSize:       cfg.Context.SampleSize,
		MinWordLength:    cfg.Context.MinWordLength,
		MaxWordLength:    cfg.Context.MaxWordLength,
		MinTermFrequency: cfg.Context.MinTermFrequency,
		Terms:            cfg.Context.Terms,
	}
	result, err := searcher.Context(context.Background(), path, content, params)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
