//go:build !purego

package index

// This file is compiled by default (CGO enabled). It registers the cgo
// SQLite driver, which is faster than the pure-Go driver for the
// transaction-heavy write path used during indexing.
//
// Build command:
//   CGO_ENABLED=1 go build ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite3"
	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
