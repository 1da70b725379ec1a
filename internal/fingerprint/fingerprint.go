// Package fingerprint derives content hashes for comparison-relevant
// definition text.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/procdiff/procdiff/internal/normalize"
)

// Fingerprint is the SHA256 hex digest of a normalized definition.
// Two definitions compare as equal exactly when their fingerprints match.
type Fingerprint string

// Compute normalizes text with the given comment syntax and hashes the result.
func Compute(text string, syn normalize.Syntax) Fingerprint {
	sum := sha256.Sum256([]byte(normalize.Text(text, syn)))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// String returns a human-readable representation of the fingerprint.
func (f Fingerprint) String() string {
	if len(f) >= 8 {
		return fmt.Sprintf("fingerprint: %s", string(f[:8]))
	}
	return fmt.Sprintf("fingerprint: %s", string(f))
}
