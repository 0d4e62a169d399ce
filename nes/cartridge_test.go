package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildINES assembles a minimal in-memory iNES image: prgChunks*16KiB of
// PRG-ROM and chrChunks*8KiB of CHR-ROM, both zero-filled.
func buildINES(mapperID byte, mirrorVertical bool, prgChunks, chrChunks byte) []byte {
	header := make([]byte, 16)
	copy(header, []byte(inesMagic))
	header[4] = prgChunks
	header[5] = chrChunks
	flags6 := (mapperID & 0x0F) << 4
	if mirrorVertical {
		flags6 |= 0x01
	}
	header[6] = flags6
	header[7] = mapperID & 0xF0

	data := append([]byte{}, header...)
	data = append(data, make([]byte, 16*1024*int(prgChunks))...)
	data = append(data, make([]byte, 8*1024*int(chrChunks))...)
	return data
}

func TestParseRomMagicAndMapper(t *testing.T) {
	data := buildINES(0, true, 1, 1)
	rom, err := ParseRom(data)
	require.NoError(t, err)
	assert.Equal(t, byte(0), rom.MapperID)
	assert.Equal(t, MirrorVertical, rom.Mirroring)
	assert.Len(t, rom.PrgRom, 16*1024)
	assert.Len(t, rom.ChrRom, 8*1024)
}

func TestParseRomBadMagic(t *testing.T) {
	data := buildINES(0, false, 1, 1)
	data[0] = 'X'
	_, err := ParseRom(data)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCartridgeInvalid, kind)
}

func TestParseRomTrainerSkipped(t *testing.T) {
	header := make([]byte, 16)
	copy(header, []byte(inesMagic))
	header[4] = 1 // 1 PRG chunk
	header[5] = 0
	header[6] = 1 << 2 // trainer present

	data := append([]byte{}, header...)
	data = append(data, make([]byte, 512)...) // trainer
	prg := make([]byte, 16*1024)
	prg[0] = 0x42
	data = append(data, prg...)

	rom, err := ParseRom(data)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), rom.PrgRom[0])
}

func TestNewCartridgeUnsupportedMapper(t *testing.T) {
	data := buildINES(4, false, 1, 1)
	_, err := NewCartridge(data)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCartridgeInvalid, kind)
}

func TestCartridgePrgRamRoundTrip(t *testing.T) {
	data := buildINES(0, false, 2, 1)
	cart, err := NewCartridge(data)
	require.NoError(t, err)

	cart.WritePRG(0x6000, 0x99)
	assert.Equal(t, byte(0x99), cart.ReadPRG(0x6000))

	// PRG-ROM writes are rejected (NROM).
	assert.False(t, cart.WritePRG(0x8000, 0x11))
}
