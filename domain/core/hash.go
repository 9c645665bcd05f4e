package core

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Bytes decodes the hex representation back to raw bytes.
// Returns nil if the hash is empty or not valid hex.
func (h Hash) Bytes() []byte {
	b, err := hex.DecodeString(string(h))
	if err != nil {
		return nil
	}
	return b
}

// Domain-specific hash types
type (
	// ChainLink is one link of a sequential segment hash chain.
	ChainLink Hash
	// SegmentHash is the hash recorded for a single video segment at capture time.
	SegmentHash Hash
	// CaptureSalt seeds the first link of a chain, binding it to one capture.
	CaptureSalt Hash
)

// Constructors
func NewSegmentHash(data []byte) SegmentHash { return SegmentHash(NewHash(data)) }
func NewCaptureSalt(data []byte) CaptureSalt { return CaptureSalt(NewHash(data)) }

// String conversions
func (h ChainLink) String() string   { return Hash(h).String() }
func (h SegmentHash) String() string { return Hash(h).String() }
func (h CaptureSalt) String() string { return Hash(h).String() }

// GenesisLink derives the first chain link from a capture salt.
func GenesisLink(salt []byte) ChainLink {
	return ChainLink(NewHash(salt))
}

// NextLink computes link_i = SHA256(link_{i-1} || segment_bytes) by streaming
// the segment through the hasher. Memory stays bounded by the copy buffer, not
// the segment size.
func NextLink(prev ChainLink, segment io.Reader) (ChainLink, error) {
	h := sha256.New()
	h.Write(Hash(prev).Bytes())
	if _, err := io.Copy(h, segment); err != nil {
		return "", err
	}
	return ChainLink(hex.EncodeToString(h.Sum(nil))), nil
}
