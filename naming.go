package chunkstore

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxChunkNameLen is the longest chunk file name the backing filesystem
// must support. The directory guard probes for it at open time.
const MaxChunkNameLen = 104

// Digest names are truncated to this many hex characters.
const chunkNameLen = 8

// chunkName maps an encoded key to its file name: the hex sha256 digest of
// the key bytes, truncated. Names are deterministic and fixed-size, so the
// facade keeps a name-to-key index to enumerate accepted keys.
func chunkName(encodedKey []byte) string {
	sum := sha256.Sum256(encodedKey)
	return hex.EncodeToString(sum[:])[:chunkNameLen]
}
