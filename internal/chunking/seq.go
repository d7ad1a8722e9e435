package chunking

// seqChunker implements spec §4.3.9: walk the buffer comparing each byte to
// its predecessor, counting the length of a monotonic run in the configured
// direction. Equal bytes are absorbed (skipped) rather than breaking the
// run. A run reaching seq_length_threshold cuts there; a count of
// opposing-direction steps reaching jump_trigger instead skips jump_size
// bytes ahead, on the theory that noisy regions are unlikely to hold a
// stable run worth waiting for.
type seqChunker struct {
	minBlock     int
	maxBlock     int
	lengthThresh int
	jumpTrigger  int
	jumpSize     int
	mode         SeqMode
}

func newSeqChunker(p Params) (Chunker, error) {
	if err := requirePositive("seq_min", p.SeqMin); err != nil {
		return nil, err
	}
	if err := requirePositive("seq_max", p.SeqMax); err != nil {
		return nil, err
	}
	if err := requirePositive("seq_length_threshold", p.SeqLengthThreshold); err != nil {
		return nil, err
	}
	if err := requirePositive("seq_jump_trigger", p.SeqJumpTrigger); err != nil {
		return nil, err
	}
	if err := requirePositive("seq_jump_size", p.SeqJumpSize); err != nil {
		return nil, err
	}
	return &seqChunker{
		minBlock:     p.SeqMin,
		maxBlock:     p.SeqMax,
		lengthThresh: p.SeqLengthThreshold,
		jumpTrigger:  p.SeqJumpTrigger,
		jumpSize:     p.SeqJumpSize,
		mode:         p.SeqMode,
	}, nil
}

func (c *seqChunker) Name() string { return "Seq Chunking" }

func (c *seqChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n < c.minBlock {
		return n, nil
	}
	size := n
	if size > c.maxBlock {
		size = c.maxBlock
	}

	switch c.mode {
	case SeqIncreasing:
		return c.scan(buf, size, false), nil
	case SeqDecreasing:
		return c.scan(buf, size, true), nil
	default:
		return size, nil
	}
}

// scan walks [minBlock, size) counting a run in the run direction implied by
// invert (false: treat decreases as opposing; true: treat increases as
// opposing), matching find_cutpoint_increasing/find_cutpoint_decreasing.
func (c *seqChunker) scan(buf []byte, size int, invert bool) int {
	pos := c.minBlock
	var opposing, runLength int

	for pos < size {
		delta := int(buf[pos]) - int(buf[pos-1])
		pos++

		if delta == 0 {
			continue
		}

		opposingStep := delta < 0
		if invert {
			opposingStep = !opposingStep
		}

		if opposingStep {
			opposing++
			runLength = 0
		} else {
			runLength++
		}

		if runLength == c.lengthThresh {
			return pos - 1
		}
		if opposing == c.jumpTrigger {
			pos += c.jumpSize
			opposing = 0
		}
	}

	return size
}
