package crc

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func validParams() Params {
	return Params{
		MinBlock:   64,
		AvgBlock:   256,
		MaxBlock:   1024,
		WindowSize: 32,
		WindowStep: 1,
		HashBits:   8,
	}
}

func TestNewRejectsBadParams(t *testing.T) {
	bad := []func(*Params){
		func(p *Params) { p.MinBlock = 0 },
		func(p *Params) { p.MaxBlock = 0 },
		func(p *Params) { p.MinBlock, p.MaxBlock = 500, 100 },
		func(p *Params) { p.WindowSize = 0 },
		func(p *Params) { p.WindowSize = p.MinBlock + 1 },
		func(p *Params) { p.WindowStep = 0 },
		func(p *Params) { p.HashBits = 0 },
		func(p *Params) { p.HashBits = 32 },
	}
	for _, mutate := range bad {
		p := validParams()
		mutate(&p)
		_, err := New(p)
		require.Error(t, err)
	}
}

func TestFindCutpointConservesAndBounds(t *testing.T) {
	c, err := New(validParams())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	data := make([]byte, 20000)
	rng.Read(data)

	var reconstructed []byte
	pos := 0
	for pos < len(data) {
		cut, err := c.FindCutpoint(data[pos:], len(data)-pos)
		require.NoError(t, err)
		require.Greater(t, cut, 0)
		require.LessOrEqual(t, cut, len(data)-pos)

		remaining := len(data) - pos
		if cut != remaining {
			require.LessOrEqual(t, cut, 1024)
		}

		reconstructed = append(reconstructed, data[pos:pos+cut]...)
		pos += cut
	}
	require.True(t, bytes.Equal(reconstructed, data))
}

func TestFindCutpointBelowMinReturnsWholeBuffer(t *testing.T) {
	c, err := New(validParams())
	require.NoError(t, err)

	buf := make([]byte, 10)
	cut, err := c.FindCutpoint(buf, len(buf))
	require.NoError(t, err)
	require.Equal(t, 10, cut)
}

func TestName(t *testing.T) {
	c, err := New(validParams())
	require.NoError(t, err)
	require.Equal(t, "CRC Chunking", c.Name())
}
