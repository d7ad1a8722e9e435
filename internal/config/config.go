package config

import (
	"fmt"

	"github.com/uwasl/dedupbench/internal/chunking"
	"github.com/uwasl/dedupbench/internal/deduperr"
	"github.com/uwasl/dedupbench/internal/hashing"
	"github.com/uwasl/dedupbench/internal/simd"
)

// Config is the fully resolved, validated run configuration: everything
// needed to construct a chunking.Chunker, an optional hashing backend, and a
// stream.Driver, per spec §6.
type Config struct {
	Chunking   chunking.Params
	Hashing    hashing.Algorithm
	OutputFile string
	BufferSize int
}

// Load reads and validates the config file at path, reading the keys that
// populateAlgoParams lists for whichever chunking_algo it names.
func Load(path string) (*Config, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return fromParser(p)
}

func fromParser(p *Parser) (*Config, error) {
	algoRaw, err := p.require("chunking_algo")
	if err != nil {
		return nil, err
	}
	algo := chunking.Algorithm(algoRaw)

	simdRaw := p.optional("simd_mode", "")
	mode, err := simd.ParseMode(simdRaw)
	if err != nil {
		return nil, deduperr.NewConfigError("simd_mode", err)
	}

	params := chunking.Params{Algo: algo, SimdMode: mode}
	if err := populateAlgoParams(p, &params); err != nil {
		return nil, err
	}

	hashingRaw := p.optional("hashing_algo", string(hashing.AlgoNone))
	outputFile := p.optional("output_file", "hashes.out")

	defaultBuffer := 2 * maxBlockOf(params)
	bufferSize, err := p.optionalInt("buffer_size", defaultBuffer)
	if err != nil {
		return nil, err
	}

	return &Config{
		Chunking:   params,
		Hashing:    hashing.Algorithm(hashingRaw),
		OutputFile: outputFile,
		BufferSize: bufferSize,
	}, nil
}

// populateAlgoParams reads whichever keys spec §3's parameter enumeration
// lists for params.Algo. Key names are exactly those from §3/§6, not the
// dedup-bench reference's *_size-suffixed, RABINC_-prefixed config.hpp names.
func populateAlgoParams(p *Parser, params *chunking.Params) error {
	var err error
	switch params.Algo {
	case chunking.AlgoFixed:
		params.FixedSize, err = p.requireInt("fixed_size")

	case chunking.AlgoAE:
		params.AEWindowSize, err = p.requireInt("ae_window_size")
		if err == nil {
			modeRaw := p.optional("ae_mode", "max")
			if modeRaw == "min" {
				params.AEMode = chunking.AEMin
			} else {
				params.AEMode = chunking.AEMax
			}
		}

	case chunking.AlgoMAXP:
		if params.MAXPWindowSize, err = p.requireInt("maxp_window_size"); err == nil {
			params.MAXPMaxBlock, err = p.requireInt("maxp_max_block")
		}

	case chunking.AlgoRAM:
		if params.RAMWindowSize, err = p.requireInt("ram_window_size"); err == nil {
			params.RAMMaxBlock, err = p.requireInt("ram_max_block")
		}

	case chunking.AlgoGear:
		if params.GearMinBlock, err = p.requireInt("gear_min_block"); err == nil {
			if params.GearAvgBlock, err = p.requireInt("gear_avg_block"); err == nil {
				if params.GearMaxBlock, err = p.requireInt("gear_max_block"); err == nil {
					params.GearSeed, err = p.optionalUint64("gear_seed", 0)
				}
			}
		}

	case chunking.AlgoFastCDC:
		if params.FastCDCMinBlock, err = p.requireInt("fastcdc_min_block"); err == nil {
			if params.FastCDCAvgBlock, err = p.requireInt("fastcdc_avg_block"); err == nil {
				if params.FastCDCMaxBlock, err = p.requireInt("fastcdc_max_block"); err == nil {
					if params.FastCDCNormLevel, err = p.optionalInt("fastcdc_norm_level", 2); err == nil {
						params.FastCDCSeed, err = p.optionalUint64("fastcdc_seed", 0)
					}
				}
			}
		}

	case chunking.AlgoRabin:
		if params.RabinWindowSize, err = p.requireInt("rabin_window_size"); err == nil {
			if params.RabinMinBlock, err = p.requireInt("rabin_min_block"); err == nil {
				if params.RabinAvgBlock, err = p.requireInt("rabin_avg_block"); err == nil {
					params.RabinMaxBlock, err = p.requireInt("rabin_max_block")
				}
			}
		}

	case chunking.AlgoTTTD:
		if params.TTTDMin, err = p.requireInt("tttd_min"); err == nil {
			if params.TTTDAvg, err = p.requireInt("tttd_avg"); err == nil {
				params.TTTDMax, err = p.requireInt("tttd_max")
			}
		}

	case chunking.AlgoSeq:
		if params.SeqMin, err = p.requireInt("seq_min"); err == nil {
			if params.SeqMax, err = p.requireInt("seq_max"); err == nil {
				if params.SeqLengthThreshold, err = p.requireInt("seq_length_threshold"); err == nil {
					if params.SeqJumpTrigger, err = p.requireInt("seq_jump_trigger"); err == nil {
						if params.SeqJumpSize, err = p.requireInt("seq_jump_size"); err == nil {
							modeRaw := p.optional("seq_mode", "increasing")
							if modeRaw == "decreasing" {
								params.SeqMode = chunking.SeqDecreasing
							} else {
								params.SeqMode = chunking.SeqIncreasing
							}
						}
					}
				}
			}
		}

	case chunking.AlgoCRC:
		if params.CRCMin, err = p.requireInt("crc_min"); err == nil {
			if params.CRCAvg, err = p.requireInt("crc_avg"); err == nil {
				if params.CRCMax, err = p.requireInt("crc_max"); err == nil {
					if params.CRCWindowSize, err = p.optionalInt("crc_window_size", 256); err == nil {
						if params.CRCWindowStep, err = p.optionalInt("crc_window_step", 1); err == nil {
							params.CRCHashBits, err = p.optionalInt("crc_hash_bits", 14)
						}
					}
				}
			}
		}

	default:
		return deduperr.NewConfigError("chunking_algo", fmt.Errorf("unrecognised algorithm %q", params.Algo))
	}
	return err
}

// maxBlockOf extracts whichever algorithm's max_block_size field is active,
// for sizing the default streaming buffer (spec §5: the buffer must be able
// to hold at least one maximal chunk plus read-ahead). AE has no max_block
// at all (spec §3 lists only ae_window_size, ae_mode) and can legitimately
// emit a single chunk spanning the whole stream (spec §4.3.2, scenario S4);
// the pump's buffer growth (internal/stream.Pump.grow) is what actually
// accommodates that, so the default here is only a cheap starting point, not
// a cap.
func maxBlockOf(p chunking.Params) int {
	switch p.Algo {
	case chunking.AlgoFixed:
		return p.FixedSize
	case chunking.AlgoAE:
		return p.AEWindowSize
	case chunking.AlgoMAXP:
		return p.MAXPMaxBlock
	case chunking.AlgoRAM:
		return p.RAMMaxBlock
	case chunking.AlgoGear:
		return p.GearMaxBlock
	case chunking.AlgoFastCDC:
		return p.FastCDCMaxBlock
	case chunking.AlgoRabin:
		return p.RabinMaxBlock
	case chunking.AlgoTTTD:
		return p.TTTDMax
	case chunking.AlgoSeq:
		return p.SeqMax
	case chunking.AlgoCRC:
		return p.CRCMax
	default:
		return 1 << 20
	}
}
