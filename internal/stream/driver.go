package stream

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"time"

	"github.com/uwasl/dedupbench/internal/chunking"
)

// Record is one line of driver output: the chunk's digest (hex-encoded, or
// the INVALID HASH placeholder from spec §6 when hashing is disabled) and
// its size, matching File_Chunk::to_string's "<digest>,<size>" format.
type Record struct {
	Digest string
	Size   int
}

// invalidHash is printed in place of a digest when hashing is disabled,
// mirroring File_Chunk::to_string's behavior for a chunk with no chunk_hash.
const invalidHash = "INVALID HASH"

// Stats summarizes one Driver.Run call: chunk/byte totals plus the time
// spent in each phase, enough to compute the MB/sec throughput figures the
// reference driver prints after chunking a stream.
type Stats struct {
	TotalChunks      int
	TotalBytes       int64
	ChunkingDuration time.Duration
	HashingDuration  time.Duration
}

// ChunkingThroughputMBps returns bytes chunked per millisecond-equivalent
// megabyte-per-second figure, 0 if no time elapsed.
func (s Stats) ChunkingThroughputMBps() float64 {
	return throughput(s.TotalBytes, s.ChunkingDuration)
}

// HashingThroughputMBps mirrors ChunkingThroughputMBps for the hashing phase.
func (s Stats) HashingThroughputMBps() float64 {
	return throughput(s.TotalBytes, s.HashingDuration)
}

func throughput(bytes int64, d time.Duration) float64 {
	ms := d.Seconds() * 1000
	if ms <= 0 {
		return 0
	}
	return float64(bytes) / 1000 / ms
}

// Driver chunks an io.Reader through a chunking.Chunker, optionally hashes
// each chunk, and streams the resulting Records to a callback -- generalizing
// driver_function_stream's read-everything/chunk-everything/hash-everything
// passes into a single pass over one buffered pump, so arbitrarily large
// inputs never need to live fully in memory.
type Driver struct {
	chunker chunking.Chunker
	hasher  hash.Hash
}

// NewDriver builds a Driver. hasher may be nil to disable hashing, in which
// case every Record carries the INVALID HASH placeholder.
func NewDriver(chunker chunking.Chunker, hasher hash.Hash) *Driver {
	return &Driver{chunker: chunker, hasher: hasher}
}

// Run pumps r through the chunker and hasher, invoking emit once per chunk in
// stream order, and returns aggregate Stats.
func (d *Driver) Run(r io.Reader, bufferSize int, emit func(Record)) (Stats, error) {
	pump, err := NewPump(r, d.chunker, bufferSize)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for {
		chunkStart := time.Now()
		chunk, err := pump.Next()
		stats.ChunkingDuration += time.Since(chunkStart)
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}

		stats.TotalChunks++
		stats.TotalBytes += int64(chunk.Length)

		digest := invalidHash
		if d.hasher != nil {
			hashStart := time.Now()
			d.hasher.Reset()
			d.hasher.Write(chunk.Data)
			digest = hex.EncodeToString(d.hasher.Sum(nil))
			stats.HashingDuration += time.Since(hashStart)
		}

		emit(Record{Digest: digest, Size: chunk.Length})
	}

	return stats, nil
}

// String renders a Record in the reference driver's "<digest>,<size>" line
// format.
func (r Record) String() string {
	return fmt.Sprintf("%s,%d", r.Digest, r.Size)
}
