// Package simd implements the vectorised min/max and range-comparison scans
// that the local-extremum chunking algorithms (AE, MAXP, RAM) rely on, plus a
// portable scalar fallback. Mode selection happens once, at construction of
// the enclosing algorithm, and is cached as a Mode tag on it; there is no
// per-call branching in the hot path beyond a single switch over that tag.
//
// Go has no portable way to emit hand-written vector instructions without
// cgo or an assembler (the corpus's own SIMD-accelerated packages --
// minio/sha256-simd, klauspost/crc32 -- ship precompiled assembly for this
// reason). Lacking that, each "vector" mode here keeps the register-width
// grouping and pairwise-reduction shape the spec calls for, but performs the
// lane arithmetic with plain Go over register-sized sub-slices. The scalar
// path is the oracle: every mode is required to agree with it bit-for-bit
// (Op correctness is covered by TestModesAgreeWithScalar).
package simd

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// Mode tags which register width (if any) an algorithm was constructed for.
type Mode int

const (
	ModeScalar Mode = iota
	ModeSSE128
	ModeAVX256
	ModeAVX512
	ModeNEON
	ModeAltivec
)

func (m Mode) String() string {
	switch m {
	case ModeScalar:
		return "scalar"
	case ModeSSE128:
		return "sse128"
	case ModeAVX256:
		return "avx256"
	case ModeAVX512:
		return "avx512"
	case ModeNEON:
		return "neon"
	case ModeAltivec:
		return "altivec"
	default:
		return "unknown"
	}
}

// ParseMode maps a config file's simd_mode value to a Mode. "none" and ""
// both mean scalar; "auto" resolves to the best mode the running CPU
// advertises support for.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none":
		return ModeScalar, nil
	case "auto":
		return ResolveAuto(), nil
	case "sse128":
		return ModeSSE128, nil
	case "avx256":
		return ModeAVX256, nil
	case "avx512":
		return ModeAVX512, nil
	case "neon":
		return ModeNEON, nil
	case "altivec":
		return ModeAltivec, nil
	default:
		return ModeScalar, fmt.Errorf("unrecognised simd_mode %q", s)
	}
}

// ResolveAuto picks the widest vector mode the running CPU actually
// supports, using cpuid feature bits rather than GOARCH alone (a GOARCH=amd64
// build may still lack AVX512 at runtime).
func ResolveAuto() Mode {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return ModeAVX512
	case cpuid.CPU.Supports(cpuid.AVX2):
		return ModeAVX256
	case cpuid.CPU.Supports(cpuid.SSE3):
		return ModeSSE128
	case cpuid.CPU.Has(cpuid.ASIMD):
		return ModeNEON
	default:
		return ModeScalar
	}
}

// RegisterWidthBytes is the lane width of a mode's register, in bytes. Scalar
// has no register requirement and reports 1 so width validation is a no-op
// for it.
func RegisterWidthBytes(m Mode) int {
	switch m {
	case ModeSSE128, ModeNEON, ModeAltivec:
		return 16
	case ModeAVX256:
		return 32
	case ModeAVX512:
		return 64
	default:
		return 1
	}
}

// ValidateWindow enforces the construction-time rule from spec §4.1: window
// sizes handed to a SIMD mode must be a positive, even multiple of that
// mode's register byte width. Algorithms call this once, at construction,
// so the hot path never has to think about it.
func ValidateWindow(m Mode, windowSize int) error {
	if windowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	width := RegisterWidthBytes(m)
	if m == ModeScalar {
		return nil
	}
	if windowSize%width != 0 {
		return fmt.Errorf("window size %d is not a multiple of %s register width %d", windowSize, m, width)
	}
	if (windowSize/width)%2 != 0 {
		return fmt.Errorf("window size %d does not make an even number of %s vectors", windowSize, m)
	}
	return nil
}

// Op is a range-scan predicate.
type Op int

const (
	OpGT Op = iota
	OpGEQ
	OpLT
	OpLEQ
)

func match(op Op, v, target byte) bool {
	switch op {
	case OpGT:
		return v > target
	case OpGEQ:
		return v >= target
	case OpLT:
		return v < target
	case OpLEQ:
		return v <= target
	default:
		return false
	}
}

// RangeScanFirst returns the position in [start, end) of the first byte of
// buf satisfying op against target, scanning in strictly increasing order,
// or end if no byte matches. Every Mode must return the identical position
// as ModeScalar for identical input.
func RangeScanFirst(buf []byte, start, end int, target byte, op Op, mode Mode) int {
	width := RegisterWidthBytes(mode)
	if mode == ModeScalar || width <= 1 {
		return scalarRangeScanFirst(buf, start, end, target, op)
	}
	return vectorRangeScanFirst(buf, start, end, target, op, width)
}

func scalarRangeScanFirst(buf []byte, start, end int, target byte, op Op) int {
	for i := start; i < end; i++ {
		if match(op, buf[i], target) {
			return i
		}
	}
	return end
}

// vectorRangeScanFirst processes the range in register-width lanes: within a
// lane, any matching byte short-circuits the whole call (the spec's
// "short-circuit test"), otherwise it advances a full lane at a time. The
// trailing partial lane falls back to a byte-at-a-time scan.
func vectorRangeScanFirst(buf []byte, start, end int, target byte, op Op, width int) int {
	i := start
	for ; i+width <= end; i += width {
		for j := 0; j < width; j++ {
			if match(op, buf[i+j], target) {
				return i + j
			}
		}
	}
	for ; i < end; i++ {
		if match(op, buf[i], target) {
			return i
		}
	}
	return end
}

// FindMax returns the maximum byte value in buf[start:end] via a
// pairwise-reduction tree: register-sized partials are reduced with pairwise
// max until one vector remains, which is then scanned linearly. For the
// scalar mode this degenerates to a single linear max.
func FindMax(buf []byte, start, end int, mode Mode) byte {
	return reduce(buf, start, end, mode, func(a, b byte) byte {
		if a > b {
			return a
		}
		return b
	})
}

// FindMin mirrors FindMax for the minimum.
func FindMin(buf []byte, start, end int, mode Mode) byte {
	return reduce(buf, start, end, mode, func(a, b byte) byte {
		if a < b {
			return a
		}
		return b
	})
}

func reduce(buf []byte, start, end int, mode Mode, combine func(a, b byte) byte) byte {
	if start >= end {
		return 0
	}
	width := RegisterWidthBytes(mode)
	if mode == ModeScalar || width <= 1 || end-start <= width {
		acc := buf[start]
		for i := start + 1; i < end; i++ {
			acc = combine(acc, buf[i])
		}
		return acc
	}

	n := end - start
	numLanes := n / width
	lanes := make([]byte, numLanes)
	for l := 0; l < numLanes; l++ {
		base := start + l*width
		acc := buf[base]
		for j := 1; j < width; j++ {
			acc = combine(acc, buf[base+j])
		}
		lanes[l] = acc
	}
	// Pairwise-reduce the lane vector until one value remains.
	for len(lanes) > 1 {
		next := make([]byte, (len(lanes)+1)/2)
		for i := range next {
			if 2*i+1 < len(lanes) {
				next[i] = combine(lanes[2*i], lanes[2*i+1])
			} else {
				next[i] = lanes[2*i]
			}
		}
		lanes = next
	}
	acc := lanes[0]
	// Trailing partial lane, scanned linearly.
	for i := start + numLanes*width; i < end; i++ {
		acc = combine(acc, buf[i])
	}
	return acc
}
