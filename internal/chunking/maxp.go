package chunking

import "github.com/uwasl/dedupbench/internal/simd"

// maxpChunker implements spec §4.3.3: the first position p >= window_size
// whose byte is >= every byte in the preceding window and strictly greater
// than every byte in the following window, capped at max_block_size.
//
// The forward scan tests >= (not >) so that an equal-or-larger byte ahead of
// the current candidate is treated as a stronger candidate and the search
// jumps to it directly; combined with the backward <= check, a candidate
// that survives both is automatically strictly greater than its forward
// window (every forward byte was found to be < it) and >= its backward
// window, matching the spec predicate exactly.
type maxpChunker struct {
	window   int
	maxBlock int
	mode     simd.Mode
}

func newMAXPChunker(p Params) (Chunker, error) {
	if err := requirePositive("maxp_window_size", p.MAXPWindowSize); err != nil {
		return nil, err
	}
	if err := requirePositive("maxp_max_block", p.MAXPMaxBlock); err != nil {
		return nil, err
	}
	if err := simd.ValidateWindow(p.SimdMode, p.MAXPWindowSize); err != nil {
		return nil, configErr("maxp_window_size", err)
	}
	return &maxpChunker{window: p.MAXPWindowSize, maxBlock: p.MAXPMaxBlock, mode: p.SimdMode}, nil
}

func (c *maxpChunker) Name() string { return "MAXP Chunking" }

func (c *maxpChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n < 2*c.window+1 {
		return n, nil
	}
	size := n
	if size > c.maxBlock {
		size = c.maxBlock
	}

	maxPos := c.window
	for maxPos < size-c.window {
		maxValue := buf[maxPos]
		rangeEnd := maxPos + 1 + c.window
		pos := simd.RangeScanFirst(buf, maxPos+1, rangeEnd, maxValue, simd.OpGEQ, c.mode)
		if pos == rangeEnd {
			backwardMax := simd.FindMax(buf, maxPos-c.window, maxPos, c.mode)
			if backwardMax <= maxValue {
				return maxPos, nil
			}
			maxPos += c.window + 1
		} else {
			maxPos = pos
		}
	}

	return size, nil
}
