// Package crc implements the CRC-based cut-point algorithm from spec §4.3.10
// on top of github.com/klauspost/crc32's hardware-accelerated Castagnoli
// checksum, rather than the hand-rolled sliding CRC tables the dedup-bench
// reference keeps (dedup/src/chunking/crc_chunking.cpp). It lives in its own
// package, separate from package chunking, purely so it can own that
// dependency without chunking importing it back.
package crc

import (
	"fmt"

	"github.com/klauspost/crc32"

	"github.com/uwasl/dedupbench/internal/deduperr"
)

// Params bundles the CRC chunking parameters from spec §3.
type Params struct {
	MinBlock   int
	AvgBlock   int
	MaxBlock   int
	WindowSize int
	WindowStep int
	HashBits   int
}

// Chunker implements the chunking.Chunker method set structurally, so
// callers can hand a *Chunker back as a chunking.Chunker without this
// package importing chunking.
type Chunker struct {
	minBlock   int
	maxBlock   int
	windowSize int
	windowStep int
	mask       uint32
	table      *crc32.Table
}

// New validates params and builds a Chunker, or a *deduperr.ConfigError
// naming the offending key.
func New(p Params) (*Chunker, error) {
	if p.MinBlock <= 0 {
		return nil, deduperr.NewConfigError("crc_min", fmt.Errorf("must be positive, got %d", p.MinBlock))
	}
	if p.MaxBlock <= 0 {
		return nil, deduperr.NewConfigError("crc_max", fmt.Errorf("must be positive, got %d", p.MaxBlock))
	}
	if !(p.MinBlock <= p.AvgBlock && p.AvgBlock <= p.MaxBlock) {
		return nil, deduperr.NewConfigError("crc_min", fmt.Errorf("requires min (%d) <= avg (%d) <= max (%d)", p.MinBlock, p.AvgBlock, p.MaxBlock))
	}
	if p.WindowSize <= 0 {
		return nil, deduperr.NewConfigError("crc_window_size", fmt.Errorf("must be positive, got %d", p.WindowSize))
	}
	if p.WindowSize > p.MinBlock {
		return nil, deduperr.NewConfigError("crc_window_size", fmt.Errorf("window size %d cannot exceed min block size %d", p.WindowSize, p.MinBlock))
	}
	if p.WindowStep <= 0 {
		return nil, deduperr.NewConfigError("crc_window_step", fmt.Errorf("must be positive, got %d", p.WindowStep))
	}
	if p.HashBits <= 0 || p.HashBits >= 32 {
		return nil, deduperr.NewConfigError("crc_hash_bits", fmt.Errorf("must be in 1..31, got %d", p.HashBits))
	}

	return &Chunker{
		minBlock:   p.MinBlock,
		maxBlock:   p.MaxBlock,
		windowSize: p.WindowSize,
		windowStep: p.WindowStep,
		mask:       (uint32(1) << uint(p.HashBits)) - 1,
		table:      crc32.MakeTable(crc32.Castagnoli),
	}, nil
}

func (c *Chunker) Name() string { return "CRC Chunking" }

// FindCutpoint implements spec §4.3.10: starting at min_block_size, checksum
// the trailing window_size-byte window ending at each candidate position and
// cut at the first one whose low hash_bits bits are all zero. window_step
// lets the scan skip candidate positions (checking every step-th byte
// instead of every byte) to trade boundary precision for speed.
func (c *Chunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n < c.minBlock {
		return n, nil
	}
	size := n
	if size > c.maxBlock {
		size = c.maxBlock
	}

	for i := c.minBlock; i < size; i += c.windowStep {
		start := i - c.windowSize
		if start < 0 {
			start = 0
		}
		sum := crc32.Checksum(buf[start:i], c.table)
		if sum&c.mask == 0 {
			return i, nil
		}
	}
	return size, nil
}
