package chunking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwasl/dedupbench/internal/simd"
)

// chunkAll drains c over buf by repeatedly calling FindCutpoint on whatever
// remains, the way the streaming driver would once its buffer already holds
// the whole input -- sufficient for testing the per-call contract in
// isolation from internal/stream's refill logic.
func chunkAll(t *testing.T, c Chunker, buf []byte) []int {
	t.Helper()
	var sizes []int
	pos := 0
	for pos < len(buf) {
		cut, err := c.FindCutpoint(buf[pos:], len(buf)-pos)
		require.NoError(t, err)
		require.Greaterf(t, cut, 0, "cut must be positive at pos %d", pos)
		require.LessOrEqualf(t, cut, len(buf)-pos, "cut must not exceed remaining bytes at pos %d", pos)
		sizes = append(sizes, cut)
		pos += cut
	}
	return sizes
}

func randBuf(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]byte, n)
	rng.Read(buf)
	return buf
}

// S1 — Fixed, size 4, on "ABCDEFGHIJ" (spec §8).
func TestS1FixedSizeFour(t *testing.T) {
	c, err := New(Params{Algo: AlgoFixed, FixedSize: 4})
	require.NoError(t, err)

	sizes := chunkAll(t, c, []byte("ABCDEFGHIJ"))
	require.Equal(t, []int{4, 4, 2}, sizes)
}

// S2 — Gear, avg 8, min 2, max 16, 64 bytes of 0x00: the table-driven gear
// hash never satisfies the mask on an all-zero input, so every chunk is
// forced to max_block (spec §8).
func TestS2GearConstantZeros(t *testing.T) {
	c, err := New(Params{
		Algo: AlgoGear, GearMinBlock: 2, GearAvgBlock: 8, GearMaxBlock: 16,
	})
	require.NoError(t, err)

	buf := make([]byte, 64)
	sizes := chunkAll(t, c, buf)
	require.Equal(t, []int{16, 16, 16, 16}, sizes)
}

// S3 — Rabin, window 16, min 16, avg 64, max 256, 1024 bytes of 0xFF: the
// constant-window fingerprint never matches the mask, so every chunk is
// forced to max_block (spec §8).
func TestS3RabinConstantOnes(t *testing.T) {
	c, err := New(Params{
		Algo: AlgoRabin, RabinWindowSize: 16, RabinMinBlock: 16, RabinAvgBlock: 64, RabinMaxBlock: 256,
	})
	require.NoError(t, err)

	buf := make([]byte, 1024)
	for i := range buf {
		buf[i] = 0xFF
	}
	sizes := chunkAll(t, c, buf)
	require.Equal(t, []int{256, 256, 256, 256}, sizes)
}

// S4 — AE MAX, window 32, on a strictly increasing ramp of length 200: every
// later byte exceeds the running maximum and displaces it, so the extremum
// never survives a full window and AE emits a single chunk (spec §8).
func TestS4AEIncreasingRamp(t *testing.T) {
	c, err := New(Params{Algo: AlgoAE, AEWindowSize: 32, AEMode: AEMax})
	require.NoError(t, err)

	buf := make([]byte, 200)
	for i := range buf {
		buf[i] = byte(i)
	}
	sizes := chunkAll(t, c, buf)
	require.Equal(t, []int{200}, sizes)
}

func allParams() []Params {
	return []Params{
		{Algo: AlgoFixed, FixedSize: 37},
		{Algo: AlgoAE, AEWindowSize: 24, AEMode: AEMax},
		{Algo: AlgoAE, AEWindowSize: 24, AEMode: AEMin},
		{Algo: AlgoMAXP, MAXPWindowSize: 16, MAXPMaxBlock: 4096},
		{Algo: AlgoRAM, RAMWindowSize: 16, RAMMaxBlock: 4096},
		{Algo: AlgoGear, GearMinBlock: 256, GearAvgBlock: 1024, GearMaxBlock: 4096},
		{Algo: AlgoFastCDC, FastCDCMinBlock: 256, FastCDCAvgBlock: 1024, FastCDCMaxBlock: 4096, FastCDCNormLevel: 2},
		{Algo: AlgoRabin, RabinWindowSize: 16, RabinMinBlock: 256, RabinAvgBlock: 1024, RabinMaxBlock: 4096},
		{Algo: AlgoTTTD, TTTDMin: 256, TTTDAvg: 1024, TTTDMax: 4096},
		{Algo: AlgoSeq, SeqMin: 32, SeqMax: 4096, SeqLengthThreshold: 8, SeqJumpTrigger: 8, SeqJumpSize: 32, SeqMode: SeqIncreasing},
		{
			Algo: AlgoCRC, CRCMin: 256, CRCAvg: 1024, CRCMax: 4096,
			CRCWindowSize: 64, CRCWindowStep: 1, CRCHashBits: 10,
		},
	}
}

// Property 1 (conservation) and property 2 (order) from spec §8: every
// algorithm, run to completion over a random buffer, must produce chunk
// sizes that sum to the input length and are each individually positive.
func TestUniversalConservationAndOrder(t *testing.T) {
	buf := randBuf(64*1024, 101)
	for _, p := range allParams() {
		t.Run(string(p.Algo), func(t *testing.T) {
			c, err := New(p)
			require.NoError(t, err)

			sizes := chunkAll(t, c, buf)

			var total int
			for _, s := range sizes {
				require.Greater(t, s, 0)
				total += s
			}
			require.Equal(t, len(buf), total)
		})
	}
}

// Property 4 (determinism) from spec §8: identical input and parameters must
// produce an identical chunk sequence on repeated runs.
func TestUniversalDeterminism(t *testing.T) {
	buf := randBuf(32*1024, 202)
	for _, p := range allParams() {
		t.Run(string(p.Algo), func(t *testing.T) {
			c1, err := New(p)
			require.NoError(t, err)
			c2, err := New(p)
			require.NoError(t, err)

			require.Equal(t, chunkAll(t, c1, buf), chunkAll(t, c2, buf))
		})
	}
}

// Property 3 (bounds) from spec §8: for algorithms with an explicit
// min_block/max_block, every non-terminal chunk falls within that range.
func TestBoundedAlgorithmsRespectMinMax(t *testing.T) {
	buf := randBuf(64*1024, 303)

	cases := []struct {
		name     string
		params   Params
		min, max int
	}{
		{"gear", Params{Algo: AlgoGear, GearMinBlock: 256, GearAvgBlock: 1024, GearMaxBlock: 4096}, 256, 4096},
		{"fastcdc", Params{Algo: AlgoFastCDC, FastCDCMinBlock: 256, FastCDCAvgBlock: 1024, FastCDCMaxBlock: 4096, FastCDCNormLevel: 2}, 256, 4096},
		{"rabin", Params{Algo: AlgoRabin, RabinWindowSize: 16, RabinMinBlock: 256, RabinAvgBlock: 1024, RabinMaxBlock: 4096}, 256, 4096},
		{"tttd", Params{Algo: AlgoTTTD, TTTDMin: 256, TTTDAvg: 1024, TTTDMax: 4096}, 256, 4096},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.params)
			require.NoError(t, err)
			sizes := chunkAll(t, c, buf)

			for i, s := range sizes {
				if i == len(sizes)-1 {
					continue // the terminal chunk may be short
				}
				require.GreaterOrEqualf(t, s, tc.min, "chunk %d below min_block", i)
				require.LessOrEqualf(t, s, tc.max, "chunk %d above max_block", i)
			}
		})
	}
}

// S6 / property 5 — SIMD equivalence: for AE, MAXP, and RAM, every SIMD mode
// must produce the identical chunk sequence as the scalar mode.
func TestSIMDEquivalence(t *testing.T) {
	buf := randBuf(1<<20, 404) // 1 MiB pseudo-random buffer, per S6.
	modes := []simd.Mode{simd.ModeSSE128, simd.ModeAVX256, simd.ModeAVX512}

	base := []Params{
		{Algo: AlgoAE, AEWindowSize: 32, AEMode: AEMax},
		{Algo: AlgoAE, AEWindowSize: 32, AEMode: AEMin},
		{Algo: AlgoMAXP, MAXPWindowSize: 128, MAXPMaxBlock: 65536},
		{Algo: AlgoRAM, RAMWindowSize: 128, RAMMaxBlock: 65536},
	}

	for _, p := range base {
		p.SimdMode = simd.ModeScalar
		scalarChunker, err := New(p)
		require.NoError(t, err)
		want := chunkAll(t, scalarChunker, buf)

		for _, mode := range modes {
			q := p
			q.SimdMode = mode
			c, err := New(q)
			require.NoError(t, err)
			got := chunkAll(t, c, buf)
			require.Equalf(t, want, got, "%s under %s diverged from scalar", p.Algo, mode)
		}
	}
}

// Property 6 — buffer-size invariance: the chunk sequence must not depend on
// how large a window the caller happens to hand FindCutpoint, provided it is
// at least max_block+1. chunkAll always hands the entire remaining buffer,
// so this test instead caps what each call can see to max_block+1 and
// confirms the result still matches the unbounded-view run.
func TestBufferSizeInvariance(t *testing.T) {
	buf := randBuf(64*1024, 505)
	params := Params{Algo: AlgoFastCDC, FastCDCMinBlock: 256, FastCDCAvgBlock: 1024, FastCDCMaxBlock: 4096, FastCDCNormLevel: 2}

	unbounded, err := New(params)
	require.NoError(t, err)
	want := chunkAll(t, unbounded, buf)

	bounded, err := New(params)
	require.NoError(t, err)
	lookahead := params.FastCDCMaxBlock + 1

	var got []int
	pos := 0
	for pos < len(buf) {
		end := pos + lookahead
		if end > len(buf) {
			end = len(buf)
		}
		window := buf[pos:end]
		cut, err := bounded.FindCutpoint(window, len(window))
		require.NoError(t, err)
		got = append(got, cut)
		pos += cut
	}
	require.Equal(t, want, got)
}

func TestNewUnrecognisedAlgorithm(t *testing.T) {
	_, err := New(Params{Algo: "not-real"})
	require.Error(t, err)
}

func TestConstructorsRejectBadParams(t *testing.T) {
	cases := []Params{
		{Algo: AlgoFixed, FixedSize: 0},
		{Algo: AlgoAE, AEWindowSize: -1},
		{Algo: AlgoMAXP, MAXPWindowSize: 0, MAXPMaxBlock: 10},
		{Algo: AlgoRAM, RAMWindowSize: 10, RAMMaxBlock: 0},
		{Algo: AlgoGear, GearMinBlock: 10, GearAvgBlock: 5, GearMaxBlock: 20},
		{Algo: AlgoFastCDC, FastCDCMinBlock: 10, FastCDCAvgBlock: 20, FastCDCMaxBlock: 5},
		{Algo: AlgoFastCDC, FastCDCMinBlock: 10, FastCDCAvgBlock: 20, FastCDCMaxBlock: 30, FastCDCNormLevel: 9},
		{Algo: AlgoRabin, RabinWindowSize: 0, RabinMinBlock: 10, RabinAvgBlock: 20, RabinMaxBlock: 30},
		{Algo: AlgoTTTD, TTTDMin: 100, TTTDAvg: 50, TTTDMax: 20},
		{Algo: AlgoSeq, SeqMin: 0, SeqMax: 100, SeqLengthThreshold: 1, SeqJumpTrigger: 1, SeqJumpSize: 1},
	}
	for _, p := range cases {
		_, err := New(p)
		require.Errorf(t, err, "%+v should have been rejected", p)
	}
}
