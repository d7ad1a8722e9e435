package chunking

import "github.com/uwasl/dedupbench/internal/simd"

// ramChunker implements spec §4.3.4, "rapid asymmetric maximum": compute the
// max over the first window_size bytes, then cut at the first later byte
// that is >= that max.
type ramChunker struct {
	window   int
	maxBlock int
	mode     simd.Mode
}

func newRAMChunker(p Params) (Chunker, error) {
	if err := requirePositive("ram_window_size", p.RAMWindowSize); err != nil {
		return nil, err
	}
	if err := requirePositive("ram_max_block", p.RAMMaxBlock); err != nil {
		return nil, err
	}
	if err := simd.ValidateWindow(p.SimdMode, p.RAMWindowSize); err != nil {
		return nil, configErr("ram_window_size", err)
	}
	return &ramChunker{window: p.RAMWindowSize, maxBlock: p.RAMMaxBlock, mode: p.SimdMode}, nil
}

func (c *ramChunker) Name() string { return "RAM Chunking" }

func (c *ramChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n < c.window {
		return n, nil
	}
	size := n
	if size > c.maxBlock {
		size = c.maxBlock
	}

	maxValue := simd.FindMax(buf, 0, c.window, c.mode)
	pos := simd.RangeScanFirst(buf, c.window, size, maxValue, simd.OpGEQ, c.mode)
	if pos == size {
		return size, nil
	}
	return pos, nil
}
