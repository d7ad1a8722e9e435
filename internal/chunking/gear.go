package chunking

import "math/bits"

// gearChunker implements spec §4.3.5: a rolling 64-bit Gear hash, tested
// against a top-bits mask sized so the acceptance probability is ~1/avg.
type gearChunker struct {
	minBlock int
	maxBlock int
	mask     uint64
	table    [256]uint64
}

// topBitsMask returns a mask with popcount = ceil(log2(avg)) ones packed
// into the most-significant bits of a 64-bit word, per spec §3's Gear mask
// construction.
func topBitsMask(avg int) uint64 {
	k := ceilLog2(avg)
	if k <= 0 {
		return 0
	}
	if k >= 64 {
		return ^uint64(0)
	}
	return (^uint64(0) << (64 - uint(k)))
}

func ceilLog2(x int) int {
	if x <= 1 {
		return 0
	}
	return bits.Len(uint(x - 1))
}

func seededGearTable(seed uint64) [256]uint64 {
	var t [256]uint64
	if seed == 0 {
		t = GearTable
		return t
	}
	for i := range GearTable {
		t[i] = GearTable[i] ^ seed
	}
	return t
}

func newGearChunker(p Params) (Chunker, error) {
	if err := requirePositive("gear_min_block", p.GearMinBlock); err != nil {
		return nil, err
	}
	if err := requirePositive("gear_max_block", p.GearMaxBlock); err != nil {
		return nil, err
	}
	if err := requireOrder("gear_min_block", p.GearMinBlock, p.GearAvgBlock, p.GearMaxBlock); err != nil {
		return nil, err
	}
	return &gearChunker{
		minBlock: p.GearMinBlock,
		maxBlock: p.GearMaxBlock,
		mask:     topBitsMask(p.GearAvgBlock),
		table:    seededGearTable(p.GearSeed),
	}, nil
}

func (c *gearChunker) Name() string { return "Gear Chunking" }

func (c *gearChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n <= c.minBlock {
		return n, nil
	}
	size := n
	if size > c.maxBlock {
		size = c.maxBlock
	}

	var hash uint64
	// Warm the hash over the skipped prefix so acceptance tests starting at
	// minBlock see a fully "warmed" rolling history, per spec §4.3.5.
	for i := 0; i < c.minBlock; i++ {
		hash = (hash << 1) + c.table[buf[i]]
	}
	for i := c.minBlock; i < size; i++ {
		hash = (hash << 1) + c.table[buf[i]]
		if hash&c.mask == 0 {
			return i, nil
		}
	}
	return size, nil
}
