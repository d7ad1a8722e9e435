package chunking

// fixedChunker implements spec §4.3.1: c = min(n, fixed_size).
type fixedChunker struct {
	size int
}

func newFixedChunker(p Params) (Chunker, error) {
	if err := requirePositive("fixed_size", p.FixedSize); err != nil {
		return nil, err
	}
	return &fixedChunker{size: p.FixedSize}, nil
}

func (c *fixedChunker) Name() string { return "Fixed Chunking" }

func (c *fixedChunker) FindCutpoint(buf []byte, n int) (int, error) {
	if n < c.size {
		return n, nil
	}
	return c.size, nil
}
