package chunking

import (
	"fmt"
	"math"
)

// fastCDCChunker implements spec §4.3.6, two-phase normalized chunking over
// the Gear hash: a harder-to-match mask before the average size, an
// easier-to-match mask after, which tightens the chunk-size distribution
// around avg_block relative to plain Gear chunking.
type fastCDCChunker struct {
	minBlock   int
	avgBlock   int
	maxBlock   int
	smallMask  uint64
	largeMask  uint64
	table      [256]uint64
}

func newFastCDCChunker(p Params) (Chunker, error) {
	if err := requirePositive("fastcdc_min_block", p.FastCDCMinBlock); err != nil {
		return nil, err
	}
	if err := requirePositive("fastcdc_max_block", p.FastCDCMaxBlock); err != nil {
		return nil, err
	}
	if err := requireOrder("fastcdc_min_block", p.FastCDCMinBlock, p.FastCDCAvgBlock, p.FastCDCMaxBlock); err != nil {
		return nil, err
	}
	if p.FastCDCNormLevel < 0 || p.FastCDCNormLevel > 3 {
		return nil, configErr("fastcdc_norm_level", fmt.Errorf("must be 0-3, got %d", p.FastCDCNormLevel))
	}

	b := roundLog2(p.FastCDCAvgBlock)
	l := p.FastCDCNormLevel
	smallBits := b + l
	largeBits := b - l
	if largeBits < 1 {
		return nil, configErr("fastcdc_norm_level", fmt.Errorf("normalization level %d too high for average size %d", l, p.FastCDCAvgBlock))
	}

	return &fastCDCChunker{
		minBlock:  p.FastCDCMinBlock,
		avgBlock:  p.FastCDCAvgBlock,
		maxBlock:  p.FastCDCMaxBlock,
		smallMask: lowBitsMask(smallBits),
		largeMask: lowBitsMask(largeBits),
		table:     seededGearTable(p.FastCDCSeed),
	}, nil
}

func roundLog2(x int) int {
	return int(math.Round(math.Log2(float64(x))))
}

func lowBitsMask(bits int) uint64 {
	if bits <= 0 {
		return 0
	}
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(bits)) - 1
}

func (c *fastCDCChunker) Name() string { return "FastCDC Chunking" }

func (c *fastCDCChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n <= c.minBlock {
		return n, nil
	}
	size := n
	if size > c.maxBlock {
		size = c.maxBlock
	}
	avgBoundary := c.avgBlock
	if avgBoundary > size {
		avgBoundary = size
	}

	var hash uint64
	for i := 0; i < c.minBlock; i++ {
		hash = (hash << 1) + c.table[buf[i]]
	}
	for i := c.minBlock; i < avgBoundary; i++ {
		hash = (hash << 1) + c.table[buf[i]]
		if hash&c.smallMask == 0 {
			return i, nil
		}
	}
	for i := avgBoundary; i < size; i++ {
		hash = (hash << 1) + c.table[buf[i]]
		if hash&c.largeMask == 0 {
			return i, nil
		}
	}
	return size, nil
}
