// Package stream implements the streaming driver (spec §5): a double
// buffer that pulls bytes from an io.Reader, hands the logically valid
// window to a chunking.Chunker, and advances past whatever cut point it
// returns. The buffering scheme is ported from the double-cursor design in
// the teacher fastcdc package (bufCursor/bufEnd/streamPos/readerEOF, refilled
// by sliding the unconsumed tail to the front), generalized to work with any
// chunking.Chunker rather than one fixed algorithm.
package stream

import (
	"fmt"
	"io"

	"github.com/uwasl/dedupbench/internal/chunking"
	"github.com/uwasl/dedupbench/internal/deduperr"
)

// Pump owns a single read buffer and pulls successive cut points from a
// chunking.Chunker over an underlying reader.
type Pump struct {
	reader  io.Reader
	chunker chunking.Chunker

	buf       []byte
	bufCursor int
	bufEnd    int
	streamPos int
	readerEOF bool
}

// NewPump builds a Pump reading from r, cutting with chunker, starting from
// a buffer of bufferSize bytes. bufferSize should be large enough to hold
// the largest chunk the chunker can produce plus room to read ahead; callers
// size it from the algorithm's max_block_size per spec §5. For algorithms
// with no max_block, Next grows the buffer on demand, so bufferSize is only
// a starting point, not a hard cap.
func NewPump(r io.Reader, chunker chunking.Chunker, bufferSize int) (*Pump, error) {
	if bufferSize <= 0 {
		return nil, deduperr.NewConfigError("buffer_size", fmt.Errorf("must be positive, got %d", bufferSize))
	}
	p := &Pump{
		reader:    r,
		chunker:   chunker,
		buf:       make([]byte, bufferSize),
		bufCursor: bufferSize,
		bufEnd:    bufferSize,
	}
	return p, nil
}

// fillBuffer slides any unconsumed tail to the front of the buffer and tops
// off the rest by reading from the reader, unless the buffer is already
// completely full or the reader is known to be exhausted.
func (p *Pump) fillBuffer() error {
	if p.readerEOF {
		return nil
	}
	available := p.bufEnd - p.bufCursor
	if available == len(p.buf) {
		return nil
	}

	copy(p.buf[:available], p.buf[p.bufCursor:p.bufEnd])
	p.bufCursor = 0

	n, err := io.ReadFull(p.reader, p.buf[available:])
	switch err {
	case nil:
		p.bufEnd = available + n
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		p.bufEnd = available + n
		p.readerEOF = true
		return nil
	default:
		return deduperr.NewIoError("stream", err)
	}
}

// grow doubles the buffer's capacity, preserving the unconsumed tail, so a
// chunker that reports no interior cut across the entire buffered window
// (length == available) can be handed more lookahead on the next iteration
// instead of being forced to cut where it merely ran out of data. Algorithms
// with no max_block (e.g. AE, spec §4.3.2) depend on this to honor an
// unbounded chunk rather than being truncated at whatever bufferSize the
// caller happened to pick.
func (p *Pump) grow() {
	available := p.bufEnd - p.bufCursor
	next := make([]byte, len(p.buf)*2)
	copy(next, p.buf[p.bufCursor:p.bufEnd])
	p.buf = next
	p.bufCursor = 0
	p.bufEnd = available
}

// Chunk is one cut produced by the pump: the byte range [Offset, Offset+Length)
// in the logical stream, and a view into the pump's internal buffer valid
// only until the next call to Next.
type Chunk struct {
	Offset int
	Length int
	Data   []byte
}

// Next returns the next chunk, or io.EOF once the stream is exhausted.
//
// Conservation: the sum of every returned Length equals the total bytes read
// from the reader. Order: chunks are returned with strictly increasing,
// contiguous Offsets. Bounds: 0 < Length <= bufEnd-bufCursor for the data
// available at the time of the cut. Determinism: identical readers and
// chunker parameters produce an identical chunk sequence, since Next only
// ever consults buffered bytes and the chunker's own (pure) FindCutpoint.
//
// Implements spec §4.5's core loop verbatim: while FindCutpoint reports no
// interior cut (length == available) and the reader hasn't hit EOF, that is
// a "not done yet" signal, not a chunk boundary -- refill (growing the
// buffer if it's already full) and retry over the same logical window. Only
// emit once a genuine interior cut is found, or the reader is exhausted and
// no more bytes can ever arrive to extend the window.
func (p *Pump) Next() (Chunk, error) {
	for {
		if err := p.fillBuffer(); err != nil {
			return Chunk{}, err
		}
		available := p.bufEnd - p.bufCursor
		if available == 0 {
			return Chunk{}, io.EOF
		}

		length, err := p.chunker.FindCutpoint(p.buf[p.bufCursor:p.bufEnd], available)
		if err != nil {
			return Chunk{}, err
		}
		if length <= 0 || length > available {
			return Chunk{}, deduperr.NewInvariantViolation(p.chunker.Name(), "", "cut point out of bounds")
		}

		if length == available && !p.readerEOF {
			p.grow()
			continue
		}

		chunk := Chunk{
			Offset: p.streamPos,
			Length: length,
			Data:   p.buf[p.bufCursor : p.bufCursor+length],
		}
		p.bufCursor += length
		p.streamPos += length
		return chunk, nil
	}
}
