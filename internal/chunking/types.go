// Package chunking implements the cut-point algorithm registry (spec §4.2,
// "Algorithm Registry") and the ten concrete content-defined chunking
// algorithms (spec §4.3). Every algorithm is a tagged variant reachable
// through the single Chunker capability the streaming driver (package
// stream) depends on: FindCutpoint. There is no shared base class and no
// cross-algorithm mutable state; each constructor validates its own
// parameter bundle and returns a *deduperr.ConfigError on anything out of
// range.
package chunking

import (
	"fmt"

	"github.com/uwasl/dedupbench/internal/chunking/crc"
	"github.com/uwasl/dedupbench/internal/deduperr"
	"github.com/uwasl/dedupbench/internal/simd"
)

// Algorithm names the selectable chunking technique, matching the
// chunking_algo config values from spec §6 exactly.
type Algorithm string

const (
	AlgoFixed   Algorithm = "fixed"
	AlgoAE      Algorithm = "ae"
	AlgoMAXP    Algorithm = "maxp"
	AlgoRAM     Algorithm = "ram"
	AlgoGear    Algorithm = "gear"
	AlgoFastCDC Algorithm = "fastcdc"
	AlgoRabin   Algorithm = "rabins"
	AlgoTTTD    Algorithm = "tttd"
	AlgoSeq     Algorithm = "seq"
	AlgoCRC     Algorithm = "crc"
)

// AEExtremeMode selects whether AE chunking tracks a running maximum or
// minimum.
type AEExtremeMode int

const (
	AEMax AEExtremeMode = iota
	AEMin
)

// SeqMode selects which slope direction Seq chunking treats as the "run"
// direction versus the "opposing" direction.
type SeqMode int

const (
	SeqIncreasing SeqMode = iota
	SeqDecreasing
)

// Chunker is the uniform capability the streaming driver depends on: given a
// buffer and a logical length n >= 1, return a cut offset c in (0, n].
// buf[0:c) is the chunk; buf[c:n) belongs to the next call. Implementations
// must be deterministic for identical (parameters, buf[0:n)) and must not
// retain or mutate buf beyond the call.
type Chunker interface {
	FindCutpoint(buf []byte, n int) (int, error)
	Name() string
}

// Params bundles every recognised algorithm parameter from spec §3. Only the
// fields relevant to Algo are consulted; the bundle is immutable once passed
// to New.
type Params struct {
	Algo     Algorithm
	SimdMode simd.Mode

	FixedSize int

	AEWindowSize int
	AEMode       AEExtremeMode

	MAXPWindowSize int
	MAXPMaxBlock   int

	RAMWindowSize int
	RAMMaxBlock   int

	GearMinBlock int
	GearAvgBlock int
	GearMaxBlock int
	GearSeed     uint64

	FastCDCMinBlock  int
	FastCDCAvgBlock  int
	FastCDCMaxBlock  int
	FastCDCNormLevel int
	FastCDCSeed      uint64

	RabinWindowSize int
	RabinMinBlock   int
	RabinAvgBlock   int
	RabinMaxBlock   int

	TTTDMin int
	TTTDAvg int
	TTTDMax int

	SeqLengthThreshold int
	SeqJumpTrigger     int
	SeqJumpSize        int
	SeqMode            SeqMode
	SeqMin             int
	SeqMax             int

	CRCMin        int
	CRCAvg        int
	CRCMax        int
	CRCWindowSize int
	CRCWindowStep int
	CRCHashBits   int
}

// New constructs the Chunker named by params.Algo, validating its parameter
// bundle. Construction failures are *deduperr.ConfigError naming the
// offending key.
func New(params Params) (Chunker, error) {
	switch params.Algo {
	case AlgoFixed:
		return newFixedChunker(params)
	case AlgoAE:
		return newAEChunker(params)
	case AlgoMAXP:
		return newMAXPChunker(params)
	case AlgoRAM:
		return newRAMChunker(params)
	case AlgoGear:
		return newGearChunker(params)
	case AlgoFastCDC:
		return newFastCDCChunker(params)
	case AlgoRabin:
		return newRabinChunker(params)
	case AlgoTTTD:
		return newTTTDChunker(params)
	case AlgoSeq:
		return newSeqChunker(params)
	case AlgoCRC:
		return crc.New(crc.Params{
			MinBlock:   params.CRCMin,
			AvgBlock:   params.CRCAvg,
			MaxBlock:   params.CRCMax,
			WindowSize: params.CRCWindowSize,
			WindowStep: params.CRCWindowStep,
			HashBits:   params.CRCHashBits,
		})
	default:
		return nil, deduperr.NewConfigError("chunking_algo", fmt.Errorf("unrecognised algorithm %q", params.Algo))
	}
}

func requirePositive(key string, v int) error {
	if v <= 0 {
		return deduperr.NewConfigError(key, fmt.Errorf("must be positive, got %d", v))
	}
	return nil
}

func requireOrder(minKey string, min, avg, max int) error {
	if !(min <= avg && avg <= max) {
		return deduperr.NewConfigError(minKey, fmt.Errorf("requires min (%d) <= avg (%d) <= max (%d)", min, avg, max))
	}
	return nil
}

func configErr(key string, err error) error {
	return deduperr.NewConfigError(key, err)
}
