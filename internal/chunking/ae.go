package chunking

import (
	"github.com/uwasl/dedupbench/internal/deduperr"
	"github.com/uwasl/dedupbench/internal/simd"
)

// aeChunker implements spec §4.3.2, the asymmetric-extremum algorithm: walk
// forward tracking a running extremum position; if window_size bytes pass
// without a new extremum displacing it, cut there. The SIMD-accelerated path
// and the scalar path share this exact loop, differing only in which Mode
// they hand to simd.RangeScanFirst -- that is what the SIMD-equivalence
// property (spec §8, property 5) is actually testing.
type aeChunker struct {
	window int
	mode   simd.Mode
	op     simd.Op
}

func newAEChunker(p Params) (Chunker, error) {
	if err := requirePositive("ae_window_size", p.AEWindowSize); err != nil {
		return nil, err
	}
	op := simd.OpGT
	if p.AEMode == AEMin {
		op = simd.OpLT
	}
	return &aeChunker{window: p.AEWindowSize, mode: p.SimdMode, op: op}, nil
}

func (c *aeChunker) Name() string { return "AE Chunking" }

func (c *aeChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n <= c.window {
		return n, nil
	}
	p := 0
	v := buf[0]
	for {
		if p+1 >= n {
			return n, nil
		}
		rangeEnd := p + 1 + c.window
		if rangeEnd > n {
			rangeEnd = n
		}
		pos := simd.RangeScanFirst(buf, p+1, rangeEnd, v, c.op, c.mode)
		if pos == rangeEnd {
			cut := p + c.window
			if cut > n {
				cut = n
			}
			if cut <= 0 {
				return 0, deduperr.NewInvariantViolation(c.Name(), "", "computed non-positive cut")
			}
			return cut, nil
		}
		p = pos
		v = buf[pos]
	}
}
