// Package fileid provides a deterministic document ID from a file path, so a
// document re-dropped into the inbox replaces its earlier version instead of
// duplicating it.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// FileDocID returns a stable document ID for the given path. The same path
// always yields the same ID.
func FileDocID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
