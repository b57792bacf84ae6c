//go:build purego

package index

// This file is compiled when building with the purego tag. It uses a pure
// Go SQLite implementation, requiring no C compiler and producing a
// statically-linked cross-compilable binary at some write-throughput cost.
//
// Build command:
//   CGO_ENABLED=0 go build -tags purego ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite"
	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
