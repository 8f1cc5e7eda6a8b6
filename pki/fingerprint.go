package pki

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

// Fingerprint returns a base58-encoded SHA-256 digest of a public-key wire
// blob, in the style of the identities an agent-protocol IDENTITIES_ANSWER
// lists alongside each comment string.
func Fingerprint(blob []byte) string {
	sum := sha256.Sum256(blob)
	return base58.Encode(sum[:])
}
