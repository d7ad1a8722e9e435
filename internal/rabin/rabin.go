// Package rabin implements the polynomial rolling fingerprint shared by the
// Rabin and TTTD cut-point algorithms (spec §4.4). The fixed polynomial,
// degree, and table-construction algorithm are ported from the dedup-bench
// C++ reference (dedup/src/chunking/rabins_chunking.cpp): a single XOR after
// an 8-bit shift cancels the top byte of the rolling digest, driven by two
// 256-entry tables built once per window size.
package rabin

// Polynomial is the fixed irreducible polynomial used by every Rabin and
// TTTD instance. It is a constant of the run, never configurable: spec §6
// requires it to match bit-for-bit across implementations.
const Polynomial uint64 = 0x3DA3358B4DC173

// Degree is deg(Polynomial).
const Degree = 53

const polShift = Degree - 8

// State is the mutable rolling-hash state owned by a single Rabin or TTTD
// instance: a circular byte window, a write cursor, and the current digest.
// The two lookup tables are derived once at construction from Polynomial and
// the configured window size, and never mutated afterward -- each instance
// owns its own tables rather than sharing process-wide state, so two Rabin
// engines can run on separate goroutines safely.
type State struct {
	window   []byte
	wpos     int
	digest   uint64
	modTable [256]uint64
	outTable [256]uint64
}

// NewState builds a Rabin rolling-hash state for the given window size,
// computing the mod/out tables and resetting the window to a warmed state.
func NewState(windowSize int) *State {
	s := &State{window: make([]byte, windowSize)}
	s.calcTables()
	s.Reset()
	return s
}

// WindowSize reports the configured sliding window length.
func (s *State) WindowSize() int { return len(s.window) }

// Digest returns the current rolling fingerprint.
func (s *State) Digest() uint64 { return s.digest }

// deg returns the degree of polynomial p, or -1 for p == 0.
func deg(p uint64) int {
	mask := uint64(1) << 63
	for i := 0; i < 64; i++ {
		if mask&p != 0 {
			return 63 - i
		}
		mask >>= 1
	}
	return -1
}

// mod computes the remainder of x divided by p over GF(2)[x].
func mod(x, p uint64) uint64 {
	for deg(x) >= deg(p) {
		shift := uint(deg(x) - deg(p))
		x ^= p << shift
	}
	return x
}

func appendByte(hash uint64, b byte, pol uint64) uint64 {
	hash <<= 8
	hash |= uint64(b)
	return mod(hash, pol)
}

// calcOutTable computes, for each possible byte value b, the fingerprint of
// b followed by windowSize-1 zero bytes: the value to XOR in when b slides
// out of the window (calc_out_table in spec §4.4).
func (s *State) calcOutTable() {
	windowSize := len(s.window)
	for b := 0; b < 256; b++ {
		hash := appendByte(0, byte(b), Polynomial)
		for i := 0; i < windowSize-1; i++ {
			hash = appendByte(hash, 0, Polynomial)
		}
		s.outTable[b] = hash
	}
}

// calcModTable precomputes, for each 8-bit residue above Degree, the value
// that cancels the top 8 bits of the digest after an 8-bit shift-append
// (calc_mod_table in spec §4.4).
func (s *State) calcModTable() {
	k := uint64(Degree)
	for b := 0; b < 256; b++ {
		shifted := uint64(b) << k
		s.modTable[b] = mod(shifted, Polynomial) | shifted
	}
}

func (s *State) calcTables() {
	s.calcOutTable()
	s.calcModTable()
}

// append folds a new byte into the digest using modTable.
func (s *State) append(b byte) {
	index := byte(s.digest >> polShift)
	s.digest <<= 8
	s.digest |= uint64(b)
	s.digest ^= s.modTable[index]
}

// Slide retires the oldest windowed byte and folds in b, the standard
// rolling-hash slide-out/slide-in step.
func (s *State) Slide(b byte) {
	out := s.window[s.wpos]
	s.window[s.wpos] = b
	s.digest ^= s.outTable[out]
	s.wpos = (s.wpos + 1) % len(s.window)
	s.append(b)
}

// Reset zeroes the window and digest, then warms the state with a single
// sentinel byte the way the reference implementation does (rabin_reset),
// so the first real Slide call operates on a non-degenerate digest.
func (s *State) Reset() {
	for i := range s.window {
		s.window[i] = 0
	}
	s.wpos = 0
	s.digest = 0
	s.Slide(1)
}
