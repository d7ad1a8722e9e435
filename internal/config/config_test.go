package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwasl/dedupbench/internal/chunking"
	"github.com/uwasl/dedupbench/internal/deduperr"
	"github.com/uwasl/dedupbench/internal/hashing"
)

func TestParseReaderBasics(t *testing.T) {
	src := `
# a comment line
Chunking_Algo = FastCDC
fastcdc_min_block = 2048

fastcdc_avg_block = 8192
fastcdc_max_block=16384
`
	p, err := parseReader(strings.NewReader(src))
	require.NoError(t, err)

	v, ok := p.lookup("chunking_algo")
	require.True(t, ok)
	require.Equal(t, "fastcdc", v, "keys and values are lowercased before lookup")

	v, ok = p.lookup("fastcdc_max_block")
	require.True(t, ok)
	require.Equal(t, "16384", v)

	_, ok = p.lookup("# a comment line")
	require.False(t, ok)
}

func TestRequireMissingKeyIsConfigError(t *testing.T) {
	p, err := parseReader(strings.NewReader("chunking_algo = fixed\n"))
	require.NoError(t, err)

	_, err = p.require("fixed_size")
	require.Error(t, err)
	var cfgErr *deduperr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "fixed_size", cfgErr.Key)
}

func TestRequireIntInvalidValue(t *testing.T) {
	p, err := parseReader(strings.NewReader("fixed_size = not-a-number\n"))
	require.NoError(t, err)

	_, err = p.requireInt("fixed_size")
	require.Error(t, err)
}

func TestFromParserFixed(t *testing.T) {
	p, err := parseReader(strings.NewReader(`
chunking_algo = fixed
fixed_size = 4096
hashing_algo = sha256
output_file = out.csv
`))
	require.NoError(t, err)

	cfg, err := fromParser(p)
	require.NoError(t, err)
	require.Equal(t, chunking.AlgoFixed, cfg.Chunking.Algo)
	require.Equal(t, 4096, cfg.Chunking.FixedSize)
	require.Equal(t, hashing.AlgoSHA256, cfg.Hashing)
	require.Equal(t, "out.csv", cfg.OutputFile)
	require.Equal(t, 2*4096, cfg.BufferSize, "default buffer size is twice the algorithm's max block")
}

func TestFromParserRabinUsesSpecKeyNames(t *testing.T) {
	p, err := parseReader(strings.NewReader(`
chunking_algo = rabins
rabin_window_size = 16
rabin_min_block = 16
rabin_avg_block = 64
rabin_max_block = 256
`))
	require.NoError(t, err)

	cfg, err := fromParser(p)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Chunking.RabinWindowSize)
	require.Equal(t, 16, cfg.Chunking.RabinMinBlock)
	require.Equal(t, 64, cfg.Chunking.RabinAvgBlock)
	require.Equal(t, 256, cfg.Chunking.RabinMaxBlock)
}

func TestFromParserUnrecognisedAlgo(t *testing.T) {
	p, err := parseReader(strings.NewReader("chunking_algo = not-a-real-algorithm\n"))
	require.NoError(t, err)

	_, err = fromParser(p)
	require.Error(t, err)
	var cfgErr *deduperr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestFromParserInvalidSimdMode(t *testing.T) {
	p, err := parseReader(strings.NewReader(`
chunking_algo = fixed
fixed_size = 10
simd_mode = bogus
`))
	require.NoError(t, err)

	_, err = fromParser(p)
	require.Error(t, err)
}
