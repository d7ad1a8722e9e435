// Package hashing resolves the hashing_algo config value (spec §6) to a
// concrete hash.Hash backend. Every backend is a drop-in hash.Hash, so the
// streaming driver never branches on which one it holds: it just
// Write/Sum/Reset's.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/minio/sha256-simd"
	"github.com/spaolacci/murmur3"

	"github.com/uwasl/dedupbench/internal/deduperr"
)

// Algorithm names the selectable digest backend, matching the hashing_algo
// config values from spec §6.
type Algorithm string

const (
	AlgoNone    Algorithm = "none"
	AlgoMD5     Algorithm = "md5"
	AlgoSHA1    Algorithm = "sha1"
	AlgoSHA256  Algorithm = "sha256"
	AlgoSHA512  Algorithm = "sha512"
	AlgoXXHash  Algorithm = "xxhash128"
	AlgoMurmur3 Algorithm = "murmurhash3"
)

// New resolves algo to a fresh hash.Hash instance, or (nil, nil) for
// AlgoNone/"" -- hashing disabled, callers emit the INVALID HASH placeholder
// from spec §6 instead of calling Write/Sum.
func New(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case AlgoNone, "":
		return nil, nil
	case AlgoMD5:
		return md5.New(), nil
	case AlgoSHA1:
		return sha1.New(), nil
	case AlgoSHA256:
		return sha256.New(), nil
	case AlgoSHA512:
		return sha512.New(), nil
	case AlgoXXHash:
		return xxhash.New(), nil
	case AlgoMurmur3:
		return murmur3.New128(), nil
	default:
		return nil, deduperr.NewConfigError("hashing_algo", fmt.Errorf("unrecognised algorithm %q", algo))
	}
}
