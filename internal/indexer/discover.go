package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cortesi/ra/internal/config"
	"github.com/cortesi/ra/internal/document"
)

// discovered is one candidate file found under a tree's root.
type discovered struct {
	Tree     string
	RelPath  string
	AbsPath  string
	Mtime    int64
	DirEntry os.DirEntry
}

// discoverTree walks tree.Root, returning every regular file that passes
// the tree's include/exclude globs and is not a binary-extension file.
// Directories and files whose names start with "." are always skipped.
func discoverTree(tree config.Tree) ([]discovered, error) {
	var out []discovered
	err := filepath.WalkDir(tree.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != tree.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if document.IsBinaryFile(path) {
			return nil
		}

		rel, err := filepath.Rel(tree.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !tree.Matches(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, discovered{
			Tree:    tree.Name,
			RelPath: rel,
			AbsPath: path,
			Mtime:   info.ModTime().UnixNano(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
