package chunking

import (
	"math/bits"

	"github.com/uwasl/dedupbench/internal/rabin"
)

// rabinChunker implements spec §4.3.7: slide a degree-53 Rabin polynomial
// fingerprint across the buffer and cut at the first position, past
// min_block_size, whose digest has every one of its low fingerprint_mask
// bits set. Requiring all-ones (rather than all-zeros, as the historical
// native implementation does) avoids runs of zero bytes masquerading as a
// fingerprint match.
type rabinChunker struct {
	state    *rabin.State
	minBlock int
	maxBlock int
	mask     uint64
}

func floorLog2(x int) int {
	if x <= 1 {
		return 0
	}
	return bits.Len(uint(x)) - 1
}

func newRabinChunker(p Params) (Chunker, error) {
	if err := requirePositive("rabin_window_size", p.RabinWindowSize); err != nil {
		return nil, err
	}
	if err := requirePositive("rabin_min_block", p.RabinMinBlock); err != nil {
		return nil, err
	}
	if err := requirePositive("rabin_max_block", p.RabinMaxBlock); err != nil {
		return nil, err
	}
	if err := requireOrder("rabin_min_block", p.RabinMinBlock, p.RabinAvgBlock, p.RabinMaxBlock); err != nil {
		return nil, err
	}
	return &rabinChunker{
		state:    rabin.NewState(p.RabinWindowSize),
		minBlock: p.RabinMinBlock,
		maxBlock: p.RabinMaxBlock,
		mask:     lowBitsMask(floorLog2(p.RabinAvgBlock)),
	}, nil
}

func (c *rabinChunker) Name() string { return "Rabin Chunking" }

func (c *rabinChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n <= c.minBlock {
		return n, nil
	}
	size := n
	if size > c.maxBlock {
		size = c.maxBlock
	}

	c.state.Reset()
	for i := 0; i < c.minBlock; i++ {
		c.state.Slide(buf[i])
	}
	for i := c.minBlock; i < size; i++ {
		c.state.Slide(buf[i])
		if c.state.Digest()&c.mask == c.mask {
			return i, nil
		}
	}
	return size, nil
}
