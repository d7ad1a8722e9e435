package chunking

import "github.com/uwasl/dedupbench/internal/rabin"

// tttdChunker implements spec §4.3.8, "two threshold, two divisor": the same
// Rabin digest as rabinChunker is tested against two masks each slide. The
// main mask (sized off avg_block) is the preferred cut; a coarser backup
// mask (sized off avg_block/2, so roughly twice as likely to match) records
// a fallback position. If the window reaches max_block_size without a main
// match, the chunker falls back to the last recorded backup position rather
// than forcing a hard cut at max_block_size.
type tttdChunker struct {
	state      *rabin.State
	minBlock   int
	maxBlock   int
	mainMask   uint64
	backupMask uint64
}

func newTTTDChunker(p Params) (Chunker, error) {
	if err := requirePositive("tttd_min", p.TTTDMin); err != nil {
		return nil, err
	}
	if err := requirePositive("tttd_max", p.TTTDMax); err != nil {
		return nil, err
	}
	if err := requireOrder("tttd_min", p.TTTDMin, p.TTTDAvg, p.TTTDMax); err != nil {
		return nil, err
	}
	return &tttdChunker{
		state:      rabin.NewState(p.TTTDMin),
		minBlock:   p.TTTDMin,
		maxBlock:   p.TTTDMax,
		mainMask:   lowBitsMask(floorLog2(p.TTTDAvg)),
		backupMask: lowBitsMask(floorLog2(p.TTTDAvg / 2)),
	}, nil
}

func (c *tttdChunker) Name() string { return "TTTD Chunking" }

func (c *tttdChunker) FindCutpoint(buf []byte, n int) (int, error) {
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

	lastBackupPos := -1
	for i := c.minBlock; i < size; i++ {
		c.state.Slide(buf[i])
		digest := c.state.Digest()
		if digest&c.mainMask == c.mainMask {
			return i, nil
		}
		if digest&c.backupMask == c.backupMask {
			lastBackupPos = i
		}
	}
	if lastBackupPos >= 0 {
		return lastBackupPos, nil
	}
	return size, nil
}
