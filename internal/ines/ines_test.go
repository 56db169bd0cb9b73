package ines

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fox-two/nesmu/internal/cartridge"
	"github.com/fox-two/nesmu/internal/neserr"
)

func buildHeader(prgPages, chrPages, flags6, flags7 byte) []byte {
	h := make([]byte, 16)
	copy(h, magic)
	h[4] = prgPages
	h[5] = chrPages
	h[6] = flags6
	h[7] = flags7
	return h
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := append([]byte("XXXX"), make([]byte, 16384+12)...)
	if _, err := Parse(data); !errors.Is(err, neserr.ErrInvalidROM) {
		t.Fatalf("expected ErrInvalidROM for bad magic, got %v", err)
	}
}

func TestParseSkipsTrainerBeforeSlicingPRG(t *testing.T) {
	header := buildHeader(1, 0, flag6Trainer, 0)
	trainer := bytes.Repeat([]byte{0xCC}, 512)
	prg := bytes.Repeat([]byte{0x55}, 16384)

	data := append(header, trainer...)
	data = append(data, prg...)

	rom, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rom.PRGBanks[0][0] != 0x55 {
		t.Fatalf("expected trainer bytes skipped, got first PRG byte %#x", rom.PRGBanks[0][0])
	}
}

func TestParseMapperCodeCombinesFlags6And7(t *testing.T) {
	header := buildHeader(1, 0, 0x40, 0x10) // mapper nibble low=4, high=1 -> 0x14
	data := append(header, make([]byte, 16384)...)

	rom, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rom.MapperCode != 0x14 {
		t.Fatalf("expected mapper code 0x14, got %#x", rom.MapperCode)
	}
}

func TestParseMirroringFromFlag6Bit0(t *testing.T) {
	header := buildHeader(1, 0, 0x01, 0)
	data := append(header, make([]byte, 16384)...)

	rom, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rom.Mirroring != cartridge.Vertical {
		t.Fatalf("expected vertical mirroring for flag6 bit 0 set")
	}
}

func TestParseRejectsTruncatedPRG(t *testing.T) {
	header := buildHeader(2, 0, 0, 0)
	data := append(header, make([]byte, 16384)...) // only one of two declared banks
	if _, err := Parse(data); !errors.Is(err, neserr.ErrInvalidROM) {
		t.Fatalf("expected ErrInvalidROM for truncated PRG, got %v", err)
	}
}

func TestBuildMapperDispatchesByMapperCode(t *testing.T) {
	rom := &ROM{MapperCode: 0, PRGBanks: [][16384]byte{{}}}
	if _, err := rom.BuildMapper(); err != nil {
		t.Fatalf("unexpected error building NROM: %v", err)
	}

	rom.MapperCode = 4
	if _, err := rom.BuildMapper(); err != nil {
		t.Fatalf("unexpected error building MMC3: %v", err)
	}

	rom.MapperCode = 99
	if _, err := rom.BuildMapper(); !errors.Is(err, neserr.ErrUnsupportedMapper) {
		t.Fatalf("expected ErrUnsupportedMapper for mapper 99, got %v", err)
	}
}

func TestBuildMapperRejectsNROMWithTooManyPRGBanks(t *testing.T) {
	rom := &ROM{MapperCode: 0, PRGBanks: [][16384]byte{{}, {}, {}}}
	if _, err := rom.BuildMapper(); !errors.Is(err, neserr.ErrInvalidROM) {
		t.Fatalf("expected ErrInvalidROM for NROM with 3 PRG banks, got %v", err)
	}
}
