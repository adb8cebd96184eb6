package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RecordID derives a deterministic record identifier from the source file
// path and the record's index within that file. Identical input yields
// identical IDs across runs, which keeps output reproducible regardless of
// worker interleaving.
func RecordID(sourceFile string, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", sourceFile, index)))
	return hex.EncodeToString(hash[:])[:16]
}
