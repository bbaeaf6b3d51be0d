// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is the fingerprint of an ordered code list. The zero Digest
// is never produced by Of and marks an uninitialized sample.
type Digest [32]byte

// domainKey separates counter-set fingerprints from any other BLAKE3
// use of the same bytes.
var domainKey = [32]byte{
	'h', 'w', 'c', 'o', 'u', 'n', 't', '.',
	'c', 'o', 'u', 'n', 't', 'e', 'r', '-',
	's', 'e', 't', '.', 'f', 'i', 'n', 'g',
	'e', 'r', 'p', 'r', 'i', 'n', 't', 1,
}

// Of digests codes in order. Each code is written as four
// little-endian bytes, prefixed by the code count, so permutations and
// prefixes of a list all produce distinct digests.
func Of[Code ~int32](codes []Code) Digest {
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("fingerprint: BLAKE3 keyed hash initialization failed: " + err.Error())
	}

	var buffer [4]byte
	binary.LittleEndian.PutUint32(buffer[:], uint32(len(codes)))
	hasher.Write(buffer[:])
	for _, code := range codes {
		binary.LittleEndian.PutUint32(buffer[:], uint32(code))
		hasher.Write(buffer[:])
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// IsZero reports whether digest is the zero value.
func (digest Digest) IsZero() bool {
	return digest == Digest{}
}

// String returns the hex form of the digest.
func (digest Digest) String() string {
	return FormatDigest(digest)
}

// Short returns the first 12 hex characters, enough to tell sessions
// apart in log output.
func (digest Digest) Short() string {
	return FormatDigest(digest)[:12]
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the canonical format used in reports and logs.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex-encoded digest string. Returns an error if
// the string is not a valid 64-character hex encoding of 32 bytes.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing fingerprint: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("fingerprint is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
