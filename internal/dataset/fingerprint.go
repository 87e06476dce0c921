package dataset

import (
	"encoding/hex"
	"io/fs"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies one version of a dataset file
type Fingerprint struct {
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Hash    string    `json:"hash"`
}

// NewFingerprint hashes data with BLAKE2b-256 and records the file stat
func NewFingerprint(info fs.FileInfo, data []byte) Fingerprint {
	sum := blake2b.Sum256(data)
	return Fingerprint{
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
		Hash:    hex.EncodeToString(sum[:]),
	}
}

// Matches reports whether info still describes the fingerprinted file.
// Only size and modification time are compared; the hash needs the content.
func (f Fingerprint) Matches(info fs.FileInfo) bool {
	return f.Size == info.Size() && f.ModTime.Equal(info.ModTime().UTC())
}

// Short returns the first 12 hex digits of the hash
func (f Fingerprint) Short() string {
	if len(f.Hash) < 12 {
		return f.Hash
	}
	return f.Hash[:12]
}
