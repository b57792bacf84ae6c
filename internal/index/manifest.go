package index

import (
	"context"
	"crypto/sha256"
)

// ChangeKind classifies a document against the stored manifest.
type ChangeKind int

const (
	Unchanged ChangeKind = iota
	Added
	Modified
	Removed
)

// Classify compares a document's current mtime against the manifest.
// Content hash is only consulted when mtime differs, since hashing every
// file on every scan defeats the point of the mtime fast path.
func Classify(ctx context.Context, store Store, docID string, mtime int64, hash func() [32]byte) (ChangeKind, error) {
	storedMtime, storedHash, ok, err := store.Manifest(ctx, docID)
	if err != nil {
		return Unchanged, err
	}
	if !ok {
		return Added, nil
	}
	if storedMtime == mtime {
		return Unchanged, nil
	}
	if hash() == storedHash {
		return Unchanged, nil
	}
	return Modified, nil
}

// HashConfig produces a stable hash over the byte-serialized configuration,
// used to detect settings changes (e.g. stemmer_language) that invalidate
// the whole index and require a full rebuild.
func HashConfig(serialized []byte) [32]byte {
	return sha256.Sum256(serialized)
}

// NeedsRebuild reports whether the store's recorded config hash differs
// from the current one. It reports false when no hash is recorded yet,
// meaning a fresh index.
func NeedsRebuild(ctx context.Context, store Store, currentHash [32]byte) (bool, error) {
	stored, ok, err := store.ConfigHash(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return stored != currentHash, nil
}
